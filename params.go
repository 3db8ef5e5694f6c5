package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/restfulbooker/booker-contract-tests/client"
	"github.com/restfulbooker/booker-contract-tests/config"
	"github.com/restfulbooker/booker-contract-tests/framework"
)

type commandParams struct {
	configPath  string
	envFile     string
	baseURL     string
	username    string
	password    string
	scenarioDir string
	parallel    int
	seed        int64
	timeout     time.Duration
	filters     framework.RegexFilters
	debug       bool
	debugAll    bool

	// args are the original arguments minus -run, -skip, and -password, for building a rerun
	// command.
	args []string
	set  map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.configPath, "config", "", "config file (YAML, JSON, TOML, or properties)")
	fs.StringVar(&c.envFile, "env-file", config.DefaultEnvFile, "file of environment variables to load if it exists")
	fs.StringVar(&c.baseURL, "url", "", "base URL of the booking service")
	fs.StringVar(&c.username, "username", "", "username for authentication")
	fs.StringVar(&c.password, "password", "", "password for authentication")
	fs.StringVar(&c.scenarioDir, "scenarios", "", "directory of additional YAML scenario files")
	fs.IntVar(&c.parallel, "parallel", 1, "maximum number of scenarios to run at once")
	fs.Int64Var(&c.seed, "seed", 0, "seed for generated payload values (0 = random)")
	fs.DurationVar(&c.timeout, "timeout", client.DefaultTimeout, "timeout for each request")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}

	c.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })

	c.args = []string{args[0]}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "run" || f.Name == "skip" || f.Name == "password" {
			return
		}
		c.args = append(c.args, "-"+f.Name+"="+f.Value.String())
	})
	return true
}

// applyTo overrides settings in cfg with any that were given on the command line.
func (c *commandParams) applyTo(cfg *config.Config) {
	if c.set["url"] {
		cfg.BaseURL = strings.TrimSuffix(c.baseURL, "/")
	}
	if c.set["username"] {
		cfg.Username = c.username
	}
	if c.set["password"] {
		cfg.Password = c.password
	}
	if c.set["scenarios"] {
		cfg.ScenarioDir = c.scenarioDir
	}
	if c.set["parallel"] {
		cfg.Parallel = c.parallel
	}
	if c.set["seed"] {
		cfg.Seed = c.seed
	}
	if c.set["timeout"] {
		cfg.Timeout = c.timeout
	}
}

// rerunCommand returns a shell command that runs only the given tests again with the same
// settings.
func (c *commandParams) rerunCommand(ids []framework.TestID) string {
	var b commandBuilder
	b.add(c.args...)
	for _, id := range ids {
		b.add("-run", "^"+regexp.QuoteMeta(id.String())+"$")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
