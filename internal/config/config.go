package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DefaultLLM   string                  `toml:"default_llm"`
	DefaultAgent string                  `toml:"default_agent"`
	LLMs         map[string]*LLMConfig   `toml:"llm"`
	Agents       map[string]*AgentConfig `toml:"agent"`
	Router       RouterConfig            `toml:"router"`
	Gateway      GatewayConfig           `toml:"gateway"`
	Tools        ToolsConfig             `toml:"tools"`
	Services     ServicesConfig          `toml:"services"`
	DB           DBConfig                `toml:"db"`
	Trace        TraceConfig             `toml:"trace"`
}

type LLMConfig struct {
	Model   string   `toml:"model"`
	BaseURL string   `toml:"base_url"`
	APIKey  string   `toml:"api_key"`
	Timeout Duration `toml:"timeout"`
}

// AgentConfig describes one agent profile: the tools it may use and the
// budgets a single run of it is granted.
type AgentConfig struct {
	Description      string   `toml:"description"`
	SystemPrompt     string   `toml:"system_prompt"`
	Tools            []string `toml:"tools"`
	MaxIterations    int      `toml:"max_iterations"`
	MaxExecutionTime Duration `toml:"max_execution_time"`
	MemoryWindow     int      `toml:"memory_window"`
}

type RouterConfig struct {
	LLM       string `toml:"llm"`      // provider used for classification
	Chaining  bool   `toml:"chaining"` // allow CHAIN verdicts
	CacheSize int    `toml:"cache_size"`
}

type GatewayConfig struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

type ToolsConfig struct {
	EnableSearch bool     `toml:"enable_search"`
	EnableCode   bool     `toml:"enable_code"`
	EnableFiles  bool     `toml:"enable_files"`
	FileRoot     string   `toml:"file_root"`
	CodeTimeout  Duration `toml:"code_timeout"`
}

type ServicesConfig struct {
	Brave BraveConfig `toml:"brave"`
}

type BraveConfig struct {
	APIKey string `toml:"api_key"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

// Duration decodes TOML strings like "30s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Load reads the config file at path, or the default location when path is
// empty. Missing files are not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = defaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DefaultLLM:   "default",
		DefaultAgent: "research",
		LLMs: map[string]*LLMConfig{
			"default": {
				Model:   "gpt-4o-mini",
				Timeout: Duration{60 * time.Second},
			},
		},
		Agents: map[string]*AgentConfig{
			"research": {
				Description: "web search, factual questions, current events, general knowledge",
				SystemPrompt: "Search for current information when asked about recent events, " +
					"cross-reference sources and be clear about uncertainty.",
				Tools:            []string{"search", "calculator"},
				MaxIterations:    10,
				MaxExecutionTime: Duration{5 * time.Minute},
				MemoryWindow:     10,
			},
			"code": {
				Description: "programming tasks, code execution, algorithmic problems, data analysis",
				SystemPrompt: "Verify computations by running code before answering. " +
					"Use the calculator for simple math and code_exec for anything beyond it.",
				Tools:            []string{"code_exec", "calculator"},
				MaxIterations:    10,
				MaxExecutionTime: Duration{5 * time.Minute},
				MemoryWindow:     10,
			},
		},
		Router: RouterConfig{
			LLM:       "default",
			Chaining:  true,
			CacheSize: 256,
		},
		Gateway: GatewayConfig{
			Addr: ":8080",
		},
		Tools: ToolsConfig{
			EnableSearch: true,
			EnableCode:   true,
			EnableFiles:  true,
			CodeTimeout:  Duration{30 * time.Second},
		},
		DB: DBConfig{
			Path: defaultDBPath(),
		},
	}
}

// knownTools is the catalog of tool names agent profiles may reference.
// Whether each one is actually registered at startup depends on the
// [tools] enable flags and service credentials.
var knownTools = map[string]bool{
	"calculator": true,
	"search":     true,
	"code_exec":  true,
	"file_read":  true,
}

func (c *Config) validate() error {
	if _, ok := c.LLMs[c.DefaultLLM]; !ok {
		return fmt.Errorf("default LLM %q not found in config", c.DefaultLLM)
	}
	if _, ok := c.Agents[c.DefaultAgent]; !ok {
		return fmt.Errorf("default agent %q not found in config", c.DefaultAgent)
	}
	if _, ok := c.LLMs[c.Router.LLM]; !ok {
		return fmt.Errorf("router LLM %q not found in config", c.Router.LLM)
	}
	for name, a := range c.Agents {
		if a.MaxIterations <= 0 {
			return fmt.Errorf("agent %q: max_iterations must be positive", name)
		}
		for _, tn := range a.Tools {
			if !knownTools[tn] {
				return fmt.Errorf("agent %q references unknown tool %q", name, tn)
			}
		}
	}
	return nil
}

func defaultConfigPath() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "switchboard", "config.toml")
}

func defaultDBPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".local", "share", "switchboard", "switchboard.db")
}
