package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/cozeprox/cmd/cozeprox/config"
	"github.com/papercomputeco/cozeprox/pkg/config"
)

// setenv sets an environment variable for the duration of the current test.
func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
			return
		}
		os.Unsetenv(key)
	})
}

func execute(args ...string) (string, error) {
	cmd := configcmder.NewConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		Expect(configcmder.NewConfigCmd().Use).To(Equal("config"))
	})

	It("has show and init subcommands", func() {
		cmds := configcmder.NewConfigCmd().Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("show", "init"))
	})
})

var _ = Describe("Config command execution", func() {
	Describe("show subcommand", func() {
		It("prints the effective config with the API key redacted", func() {
			setenv("COZE_API_KEY", "pat_1234567890abcd")
			setenv("COZE_BOT_ID", "bot-7")

			out, err := execute("show")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(`bot_id = "bot-7"`))
			Expect(out).To(ContainSubstring(`api_key = "****abcd"`))
			Expect(out).NotTo(ContainSubstring("pat_1234567890abcd"))

			parsed, err := config.ParseConfigTOML([]byte(out))
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.Coze.BotID).To(Equal("bot-7"))
		})

		It("rejects arguments", func() {
			_, err := execute("show", "extra")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("init subcommand", func() {
		It("writes a default config file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "cozeprox.toml")

			out, err := execute("init", path)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Wrote " + path))

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			parsed, err := config.ParseConfigTOML(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(config.NewDefaultConfig()))
		})

		It("refuses to overwrite an existing file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "cozeprox.toml")
			Expect(os.WriteFile(path, []byte("# mine\n"), 0o600)).To(Succeed())

			_, err := execute("init", path)
			Expect(err).To(MatchError(config.ErrConfigExists))
		})

		It("requires exactly one argument", func() {
			_, err := execute("init")
			Expect(err).To(HaveOccurred())
		})
	})
})
