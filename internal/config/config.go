package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger    string          `yaml:"jaeger" env:"JAEGER" env-default:"jaeger"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Limits    LimitsConfig    `yaml:"limits"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Search    SearchConfig    `yaml:"search"`
	Logistics LogisticsConfig `yaml:"logistics"`
	Pay       PayConfig       `yaml:"pay"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"5s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type DBConfig struct {
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"require"`
}

// Enabled reports whether a Postgres roster backend is configured at all.
func (c DBConfig) Enabled() bool {
	return c.DSN != "" || c.Host != ""
}

func (c DBConfig) DatabaseURL() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DutyTTL  time.Duration `yaml:"duty_ttl" env:"REDIS_DUTY_TTL" env-default:"5m"`
}

// LimitsConfig is the jurisdiction rule-limit table. Pointing CONFIG_PATH at a
// different yaml swaps the jurisdiction without touching evaluator code.
type LimitsConfig struct {
	MaxDutyPeriod         time.Duration `yaml:"max_duty_period" env:"LIMIT_MAX_DUTY_PERIOD" env-default:"13h"`
	MaxFlightTime         time.Duration `yaml:"max_flight_time" env:"LIMIT_MAX_FLIGHT_TIME" env-default:"9h"`
	MinRest               time.Duration `yaml:"min_rest" env:"LIMIT_MIN_REST" env-default:"10h"`
	ExtendedRest          time.Duration `yaml:"extended_rest" env:"LIMIT_EXTENDED_REST" env-default:"12h"`
	ExtendedRestAfterDays int           `yaml:"extended_rest_after_days" env:"LIMIT_EXTENDED_REST_AFTER_DAYS" env-default:"3"`
	MaxFlightHours28Day   float64       `yaml:"max_flight_hours_28d" env:"LIMIT_MAX_FLIGHT_HOURS_28D" env-default:"100"`
	MaxFlightHours365Day  float64       `yaml:"max_flight_hours_365d" env:"LIMIT_MAX_FLIGHT_HOURS_365D" env-default:"1000"`
	WOCLStart             string        `yaml:"wocl_start" env:"LIMIT_WOCL_START" env-default:"02:00"`
	WOCLEnd               string        `yaml:"wocl_end" env:"LIMIT_WOCL_END" env-default:"05:59"`
}

// RuleLimits converts the yaml shape into the evaluator's table.
func (c LimitsConfig) RuleLimits() (models.RuleLimits, error) {
	start, err := parseMinuteOfDay(c.WOCLStart)
	if err != nil {
		return models.RuleLimits{}, fmt.Errorf("wocl_start: %w", err)
	}
	end, err := parseMinuteOfDay(c.WOCLEnd)
	if err != nil {
		return models.RuleLimits{}, fmt.Errorf("wocl_end: %w", err)
	}

	return models.RuleLimits{
		MaxDutyPeriod:         c.MaxDutyPeriod,
		MaxFlightTime:         c.MaxFlightTime,
		MinRest:               c.MinRest,
		ExtendedRest:          c.ExtendedRest,
		ExtendedRestAfterDays: c.ExtendedRestAfterDays,
		MaxFlightHours28Day:   c.MaxFlightHours28Day,
		MaxFlightHours365Day:  c.MaxFlightHours365Day,
		WOCLStartMinute:       start,
		WOCLEndMinute:         end,
	}, nil
}

type ScoringConfig struct {
	HighCostThreshold string  `yaml:"high_cost_threshold" env:"SCORING_HIGH_COST_THRESHOLD" env-default:"2500"`
	HighHourlyRate    string  `yaml:"high_hourly_rate" env:"SCORING_HIGH_HOURLY_RATE" env-default:"180"`
	FreshDutyHours    float64 `yaml:"fresh_duty_hours" env:"SCORING_FRESH_DUTY_HOURS" env-default:"15"`
}

type SearchConfig struct {
	Budget          time.Duration `yaml:"budget" env:"SEARCH_BUDGET" env-default:"800ms"`
	Parallelism     int           `yaml:"parallelism" env:"SEARCH_PARALLELISM" env-default:"8"`
	ReportLead      time.Duration `yaml:"report_lead" env:"SEARCH_REPORT_LEAD" env-default:"1h"`
	AssumedBlock    time.Duration `yaml:"assumed_block" env:"SEARCH_ASSUMED_BLOCK" env-default:"4h"`
	ReleaseBuffer   time.Duration `yaml:"release_buffer" env:"SEARCH_RELEASE_BUFFER" env-default:"30m"`
	ReserveWindow   time.Duration `yaml:"reserve_window" env:"SEARCH_RESERVE_WINDOW" env-default:"12h"`
	DefaultStrategy string        `yaml:"default_strategy" env:"SEARCH_DEFAULT_STRATEGY" env-default:"cost"`
}

type LogisticsConfig struct {
	DefaultTravelMinutes int            `yaml:"default_travel_minutes" env:"LOGISTICS_DEFAULT_TRAVEL_MINUTES" env-default:"180"`
	CalloutLead          time.Duration  `yaml:"callout_lead" env:"LOGISTICS_CALLOUT_LEAD" env-default:"6h"`
	TravelMinutes        map[string]int `yaml:"travel_minutes"`
}

type PayConfig struct {
	HourlyRates        map[string]string `yaml:"hourly_rates"`
	DefaultHourlyRate  string            `yaml:"default_hourly_rate" env:"PAY_DEFAULT_HOURLY_RATE" env-default:"120"`
	PerDiemDaily       string            `yaml:"per_diem_daily" env:"PAY_PER_DIEM_DAILY" env-default:"75"`
	DeadheadFlat       string            `yaml:"deadhead_flat" env:"PAY_DEADHEAD_FLAT" env-default:"150"`
	DeadheadPerMinute  string            `yaml:"deadhead_per_minute" env:"PAY_DEADHEAD_PER_MINUTE" env-default:"1.5"`
	HotelNight         string            `yaml:"hotel_night" env:"PAY_HOTEL_NIGHT" env-default:"140"`
	OvertimeCycleHours float64           `yaml:"overtime_cycle_hours" env:"PAY_OVERTIME_CYCLE_HOURS" env-default:"60"`
	OvertimeMultiplier string            `yaml:"overtime_multiplier" env:"PAY_OVERTIME_MULTIPLIER" env-default:"0.5"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func parseMinuteOfDay(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}
