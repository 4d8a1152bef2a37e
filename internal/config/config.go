package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"5000"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
		MaxBodyBytes int64         `yaml:"max_body_bytes" default:"10485760"`
	} `yaml:"server"`

	Workers struct {
		PoolSize   int           `yaml:"pool_size" default:"1"`
		QueueSize  int           `yaml:"queue_size" default:"20"`
		RateLimit  int           `yaml:"rate_limit" default:"6"` // scrapes per minute per domain
		Burst      int           `yaml:"burst" default:"2"`
		Timeout    time.Duration `yaml:"timeout" default:"5m"`
		MaxRetries int           `yaml:"max_retries" default:"0"`
	} `yaml:"workers"`

	CircuitBreaker struct {
		MaxFailures int           `yaml:"max_failures" default:"5"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"circuit_breaker"`

	Scraper struct {
		TargetDomain      string        `yaml:"target_domain" default:"aliexpress.com"`
		CookiePath        string        `yaml:"cookie_path" default:"./aliexpress-cookies.json"`
		UserAgent         string        `yaml:"user_agent"`
		Platform          string        `yaml:"platform" default:"Win32"`
		HeadlessMode      bool          `yaml:"headless_mode" default:"true"`
		ChromeBin         string        `yaml:"chrome_bin"`
		NavigationTimeout time.Duration `yaml:"navigation_timeout" default:"60s"`
		NetworkIdle       time.Duration `yaml:"network_idle" default:"500ms"`
		IdleExcludes      []string      `yaml:"idle_excludes"`
		LoginURL          string        `yaml:"login_url" default:"https://login.aliexpress.com/"`
		HomeURL           string        `yaml:"home_url" default:"https://www.aliexpress.com/"`
		LoginWait         time.Duration `yaml:"login_wait" default:"60s"`
	} `yaml:"scraper"`

	Revealer struct {
		ScrollOffset    int           `yaml:"scroll_offset" default:"800"`
		ScrollPause     time.Duration `yaml:"scroll_pause" default:"200ms"`
		TriggerSelector string        `yaml:"trigger_selector"`
		TriggerTimeout  time.Duration `yaml:"trigger_timeout" default:"10s"`
		TriggerPause    time.Duration `yaml:"trigger_pause" default:"1500ms"`
		LoadMoreClicks  int           `yaml:"load_more_clicks" default:"3"`
		LoadMoreTimeout time.Duration `yaml:"load_more_timeout" default:"5s"`
		LoadMorePause   time.Duration `yaml:"load_more_pause" default:"2s"`
		SettleInterval  time.Duration `yaml:"settle_interval" default:"1500ms"`
		StallThreshold  int           `yaml:"stall_threshold" default:"5"`
		MaxIterations   int           `yaml:"max_iterations" default:"300"`
		FinalSettle     time.Duration `yaml:"final_settle" default:"2s"`
	} `yaml:"revealer"`

	Export struct {
		Filename string `yaml:"filename" default:"avaliacoes.csv"`
	} `yaml:"export"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool          `yaml:"enabled" default:"false"`
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		TTL      time.Duration `yaml:"ttl" default:"30m"`
	} `yaml:"redis"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
}

// DefaultUserAgent is the desktop Chrome user agent presented to the marketplace
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// DefaultTriggerSelector matches the "Ver mais" button that opens the reviews drawer
const DefaultTriggerSelector = `button.comet-v2-btn.comet-v2-btn-slim.comet-v2-btn-large.v3--btn--KaygomA.comet-v2-btn-important[style*="min-width: 260px"]`

var (
	bracedEnvPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvPattern   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	s = bracedEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	s = bareEnvPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})

	return s
}

// Default returns a configuration populated with the built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 5000
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.MaxBodyBytes = 10 << 20

	config.Workers.PoolSize = 1
	config.Workers.QueueSize = 20
	config.Workers.RateLimit = 6
	config.Workers.Burst = 2
	config.Workers.Timeout = 5 * time.Minute
	config.Workers.MaxRetries = 0

	config.CircuitBreaker.MaxFailures = 5
	config.CircuitBreaker.Timeout = 30 * time.Second

	config.Scraper.TargetDomain = "aliexpress.com"
	config.Scraper.CookiePath = "./aliexpress-cookies.json"
	config.Scraper.UserAgent = DefaultUserAgent
	config.Scraper.Platform = "Win32"
	config.Scraper.HeadlessMode = true
	config.Scraper.NavigationTimeout = 60 * time.Second
	config.Scraper.NetworkIdle = 500 * time.Millisecond
	config.Scraper.LoginURL = "https://login.aliexpress.com/"
	config.Scraper.HomeURL = "https://www.aliexpress.com/"
	config.Scraper.LoginWait = 60 * time.Second

	config.Revealer.ScrollOffset = 800
	config.Revealer.ScrollPause = 200 * time.Millisecond
	config.Revealer.TriggerSelector = DefaultTriggerSelector
	config.Revealer.TriggerTimeout = 10 * time.Second
	config.Revealer.TriggerPause = 1500 * time.Millisecond
	config.Revealer.LoadMoreClicks = 3
	config.Revealer.LoadMoreTimeout = 5 * time.Second
	config.Revealer.LoadMorePause = 2 * time.Second
	config.Revealer.SettleInterval = 1500 * time.Millisecond
	config.Revealer.StallThreshold = 5
	config.Revealer.MaxIterations = 300
	config.Revealer.FinalSettle = 2 * time.Second

	config.Export.Filename = "avaliacoes.csv"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second
	config.Redis.TTL = 30 * time.Minute

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if cookiePath := os.Getenv("COOKIE_PATH"); cookiePath != "" {
		c.Scraper.CookiePath = cookiePath
	}

	if domain := os.Getenv("TARGET_DOMAIN"); domain != "" {
		c.Scraper.TargetDomain = domain
	}

	if userAgent := os.Getenv("USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}

	if headless := os.Getenv("HEADLESS"); headless != "" {
		c.Scraper.HeadlessMode = headless == "true" || headless == "1"
	}

	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		c.Scraper.ChromeBin = chromeBin
	}

	if navTimeout := os.Getenv("NAVIGATION_TIMEOUT"); navTimeout != "" {
		if timeout, err := time.ParseDuration(navTimeout); err == nil {
			c.Scraper.NavigationTimeout = timeout
		}
	}

	if loginWait := os.Getenv("LOGIN_WAIT"); loginWait != "" {
		if wait, err := time.ParseDuration(loginWait); err == nil {
			c.Scraper.LoginWait = wait
		}
	}

	if stall := os.Getenv("STALL_THRESHOLD"); stall != "" {
		if n, err := strconv.Atoi(stall); err == nil && n > 0 {
			c.Revealer.StallThreshold = n
		}
	}

	if poolSize := os.Getenv("WORKER_POOL_SIZE"); poolSize != "" {
		if size, err := strconv.Atoi(poolSize); err == nil && size > 0 {
			c.Workers.PoolSize = size
		}
	}

	if rateLimit := os.Getenv("RATE_LIMIT"); rateLimit != "" {
		if limit, err := strconv.Atoi(rateLimit); err == nil {
			c.Workers.RateLimit = limit
		}
	}

	if workerTimeout := os.Getenv("WORKER_TIMEOUT"); workerTimeout != "" {
		if timeout, err := time.ParseDuration(workerTimeout); err == nil {
			c.Workers.Timeout = timeout
		}
	}

	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		c.Redis.Enabled = redisEnabled == "true" || redisEnabled == "1"
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTTL := os.Getenv("REDIS_TTL"); redisTTL != "" {
		if ttl, err := time.ParseDuration(redisTTL); err == nil {
			c.Redis.TTL = ttl
		}
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		c.Metrics.Enabled = metricsEnabled == "true" || metricsEnabled == "1"
	}

	c.loadLoggingAdapterEnvVars()
}

// loadLoggingAdapterEnvVars loads environment variables for logging adapters
func (c *Config) loadLoggingAdapterEnvVars() {
	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]

		switch adapter.Type {
		case "file":
			if path := os.Getenv("LOG_FILE_PATH"); path != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["file_path"] = path
			}
		case "stdout":
			if colorized := os.Getenv("LOG_COLORIZED"); colorized != "" {
				if adapter.Options == nil {
					adapter.Options = make(map[string]interface{})
				}
				adapter.Options["colorized"] = colorized == "true" || colorized == "1"
			}
		}
	}
}
