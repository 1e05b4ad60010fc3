package workflowplugins_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	workflowplugins "github.com/airdesk-ai/airdesk/internal/workflow-plugins"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/baggagetracking"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/flightbooking"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/flightstatus"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/ordermeals"
	"github.com/airdesk-ai/airdesk/pkg/config"
)

var _ = Describe("Build", func() {
	var (
		logger    *slog.Logger
		workflows *workflow.Registry
		tools     *tool.Registry
		cfg       *config.ServerConfig
		plugins   []workflowplugins.Plugin
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		workflows = workflow.NewRegistry()
		tools = tool.NewRegistry(logger)
		cfg = config.DefaultConfig()
		plugins = []workflowplugins.Plugin{
			flightbooking.New(logger),
			flightstatus.New(logger),
			baggagetracking.New(logger),
			ordermeals.New(logger),
		}
	})

	build := func() error {
		return workflowplugins.Build(workflowplugins.BuildParams{
			Plugins:   plugins,
			Workflows: workflows,
			Tools:     tools,
			Config:    cfg,
			Logger:    logger,
		})
	}

	It("should register every built-in workflow with valid definitions", func() {
		Expect(build()).To(Succeed())

		Expect(workflows.Names()).To(ConsistOf(
			"flight_booking", "flight_status", "baggage_tracking", "order_meals"))
		Expect(workflows.Validate()).To(Succeed())
	})

	It("should make every step's allowed tools resolvable", func() {
		Expect(build()).To(Succeed())

		for _, wf := range workflows.All() {
			for _, step := range wf.Steps() {
				_, missing := tools.ScopedView(wf.Name, step.AllowedTools)
				Expect(missing).To(BeEmpty(),
					"workflow %s step %s", wf.Name, step.Name)
			}
		}
	})

	It("should report no tool name collisions between the built-in modules", func() {
		Expect(build()).To(Succeed())

		Expect(tools.Collisions()).To(BeEmpty())
	})

	It("should load extra definitions from the configured YAML file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "extra.yaml")
		Expect(os.WriteFile(path, []byte(`workflows:
  - name: lounge_booking
    description: book lounge access
    steps:
      - name: only
        description: single step
        tools: []
        terminal: true
`), 0644)).To(Succeed())
		cfg.Workflows.DefinitionsPath = path

		Expect(build()).To(Succeed())

		Expect(workflows.Has("lounge_booking")).To(BeTrue())
	})

	It("should fail on a duplicate workflow name from the YAML file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "extra.yaml")
		Expect(os.WriteFile(path, []byte(`workflows:
  - name: flight_booking
    description: duplicate of the built-in module
    steps:
      - name: only
        description: single step
        tools: []
        terminal: true
`), 0644)).To(Succeed())
		cfg.Workflows.DefinitionsPath = path

		Expect(build()).NotTo(Succeed())
	})

	It("should fail when a definition violates the structural invariants", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "extra.yaml")
		Expect(os.WriteFile(path, []byte(`workflows:
  - name: stuck
    description: a non-terminal dead end
    steps:
      - name: only
        description: single step
        tools: []
`), 0644)).To(Succeed())
		cfg.Workflows.DefinitionsPath = path

		Expect(build()).NotTo(Succeed())
	})
})
