package config

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config validation", func() {
	var cfg *ServerConfig

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	It("should accept the default configuration", func() {
		Expect(validateConfig(cfg)).To(Succeed())
	})

	It("should reject unknown transport types", func() {
		cfg.Transport.Type = "grpc"

		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("transport type")))
	})

	It("should reject out-of-range ports", func() {
		cfg.Transport.Port = 70000

		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("port")))
	})

	It("should reject a non-positive timeout", func() {
		cfg.Timeout = 0

		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("timeout")))
	})

	It("should require a redis address", func() {
		cfg.Redis.Addr = ""

		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("redis address")))
	})

	It("should require a positive conversation TTL", func() {
		cfg.Redis.TTL = -time.Hour

		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("TTL")))
	})

	It("should require an LLM model", func() {
		cfg.LLM.Model = ""

		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("model")))
	})

	It("should reject unknown log levels and formats", func() {
		cfg.LogLevel = "verbose"
		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("log level")))

		cfg.LogLevel = "info"
		cfg.LogFormat = "xml"
		Expect(validateConfig(cfg)).To(MatchError(ContainSubstring("log format")))
	})
})

var _ = Describe("DefaultConfig", func() {
	It("should default to stdio transport and a day of conversation retention", func() {
		cfg := DefaultConfig()

		Expect(cfg.Transport.Type).To(Equal("stdio"))
		Expect(cfg.Redis.TTL).To(Equal(24 * time.Hour))
		Expect(cfg.Redis.Prefix).To(Equal("airdesk"))
	})
})
