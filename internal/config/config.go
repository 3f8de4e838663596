// Package config centralizes all tunable pipeline parameters: the category
// lexicon, buffer radii, score tables, fusion weights, and calibration
// bounds. Components receive the relevant section explicitly instead of
// reading ambient state.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Layers      LayersConfig    `yaml:"layers" mapstructure:"layers"`
	LexiconPath string          `yaml:"lexicon_path" mapstructure:"lexicon_path"`
	Lexicon     []LexiconEntry  `yaml:"lexicon" mapstructure:"lexicon"`
	Analysis    AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Compose     ComposeConfig   `yaml:"compose" mapstructure:"compose"`
	Sentiment   SentimentConfig `yaml:"sentiment" mapstructure:"sentiment"`
	Fusion      FusionConfig    `yaml:"fusion" mapstructure:"fusion"`
	Output      OutputConfig    `yaml:"output" mapstructure:"output"`
	Store       StoreConfig     `yaml:"store" mapstructure:"store"`
	Log         LogConfig       `yaml:"log" mapstructure:"log"`
}

// LayersConfig locates the geographic input layers.
type LayersConfig struct {
	LotsPath       string `yaml:"lots_path" mapstructure:"lots_path"`
	BusinessesPath string `yaml:"businesses_path" mapstructure:"businesses_path"`
	CensusPath     string `yaml:"census_path" mapstructure:"census_path"`
	TaxParcelsPath string `yaml:"tax_parcels_path" mapstructure:"tax_parcels_path"`
	IncomeField    string `yaml:"income_field" mapstructure:"income_field"`
	TaxField       string `yaml:"tax_field" mapstructure:"tax_field"`
	UTMZone        int    `yaml:"utm_zone" mapstructure:"utm_zone"`
	SouthHemi      bool   `yaml:"south_hemisphere" mapstructure:"south_hemisphere"`
}

// LexiconEntry maps one business category to its keyword set. Order matters:
// classification is first-match-wins over the configured sequence.
type LexiconEntry struct {
	Category string   `yaml:"category" mapstructure:"category"`
	Keywords []string `yaml:"keywords" mapstructure:"keywords"`
}

// AnalysisConfig tunes the competitive analysis buffers and normalization.
type AnalysisConfig struct {
	CompetitionRadiusM float64   `yaml:"competition_radius_m" mapstructure:"competition_radius_m"`
	TrafficRadiusM     float64   `yaml:"traffic_radius_m" mapstructure:"traffic_radius_m"`
	SaturationSteps    []float64 `yaml:"saturation_steps" mapstructure:"saturation_steps"`

	// Optional fixed normalization bounds. When max <= min the observed
	// dataset min/max is used instead, which is not portable across runs.
	TrafficBounds [2]float64 `yaml:"traffic_bounds" mapstructure:"traffic_bounds"`
	IncomeBounds  [2]float64 `yaml:"income_bounds" mapstructure:"income_bounds"`
}

// ComposeConfig selects and tunes the per-category composing policy.
type ComposeConfig struct {
	Policy            string  `yaml:"policy" mapstructure:"policy"`
	BaseConstant      float64 `yaml:"base_constant" mapstructure:"base_constant"`
	CompetitorPenalty float64 `yaml:"competitor_penalty" mapstructure:"competitor_penalty"`
	MaxTrafficBonus   float64 `yaml:"max_traffic_bonus" mapstructure:"max_traffic_bonus"`
	TrafficBonusScale float64 `yaml:"traffic_bonus_scale" mapstructure:"traffic_bonus_scale"`
	MaxUpkeepPenalty  float64 `yaml:"max_upkeep_penalty" mapstructure:"max_upkeep_penalty"`
	MaxDemoBonus      float64 `yaml:"max_demo_bonus" mapstructure:"max_demo_bonus"`
	Floor             float64 `yaml:"floor" mapstructure:"floor"`
	Ceiling           float64 `yaml:"ceiling" mapstructure:"ceiling"`
}

// SentimentConfig locates the sentiment corpora and tunes the
// nearest-match confidence decay.
type SentimentConfig struct {
	TextCorpusPath       string `yaml:"text_corpus_path" mapstructure:"text_corpus_path"`
	TranscriptCorpusPath string `yaml:"transcript_corpus_path" mapstructure:"transcript_corpus_path"`

	MaxDistanceKM    float64 `yaml:"max_distance_km" mapstructure:"max_distance_km"`
	DecayRampKM      float64 `yaml:"decay_ramp_km" mapstructure:"decay_ramp_km"`
	NoDataDistanceKM float64 `yaml:"no_data_distance_km" mapstructure:"no_data_distance_km"`
}

// FusionConfig holds the weighting schemes and calibration intervals. The
// dual scheme applies when a transcript corpus is present, the single scheme
// otherwise; each scheme's weights must sum to 1.0.
type FusionConfig struct {
	TrendsPath string `yaml:"trends_path" mapstructure:"trends_path"`

	Dual   WeightScheme `yaml:"dual" mapstructure:"dual"`
	Single WeightScheme `yaml:"single" mapstructure:"single"`

	NeutralRatio  float64 `yaml:"neutral_ratio" mapstructure:"neutral_ratio"`
	NeutralDemand float64 `yaml:"neutral_demand" mapstructure:"neutral_demand"`
}

// WeightScheme is one fixed fusion weighting plus its calibration interval.
type WeightScheme struct {
	Business   float64 `yaml:"business" mapstructure:"business"`
	Sentiment  float64 `yaml:"sentiment" mapstructure:"sentiment"`
	Transcript float64 `yaml:"transcript" mapstructure:"transcript"`
	Trend      float64 `yaml:"trend" mapstructure:"trend"`
	Floor      float64 `yaml:"floor" mapstructure:"floor"`
	Ceiling    float64 `yaml:"ceiling" mapstructure:"ceiling"`
}

// Sum returns the total of the scheme's weights.
func (w WeightScheme) Sum() float64 {
	return w.Business + w.Sentiment + w.Transcript + w.Trend
}

// OutputConfig configures pipeline outputs.
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	TopN int    `yaml:"top_n" mapstructure:"top_n"`
}

// StoreConfig configures the results store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("layers.lots_path", "data/vacant_lots.geojson")
	v.SetDefault("layers.businesses_path", "data/all_businesses.geojson")
	v.SetDefault("layers.census_path", "data/census_tracts.geojson")
	v.SetDefault("layers.income_field", "B19013001")
	v.SetDefault("layers.tax_field", "TotalTaxes")
	v.SetDefault("layers.utm_zone", 16)
	v.SetDefault("analysis.competition_radius_m", 402.34)
	v.SetDefault("analysis.traffic_radius_m", 804.67)
	v.SetDefault("analysis.saturation_steps", []float64{1.0, 0.7, 0.3})
	v.SetDefault("compose.policy", "linear")
	v.SetDefault("compose.base_constant", 85)
	v.SetDefault("compose.competitor_penalty", 20)
	v.SetDefault("compose.max_traffic_bonus", 15)
	v.SetDefault("compose.traffic_bonus_scale", 50)
	v.SetDefault("compose.max_upkeep_penalty", 20)
	v.SetDefault("compose.max_demo_bonus", 15)
	v.SetDefault("compose.floor", 5)
	v.SetDefault("compose.ceiling", 98)
	v.SetDefault("sentiment.text_corpus_path", "data/sentiment_scores.json")
	v.SetDefault("sentiment.transcript_corpus_path", "data/transcribe_scores.json")
	v.SetDefault("sentiment.max_distance_km", 15)
	v.SetDefault("sentiment.decay_ramp_km", 20)
	v.SetDefault("sentiment.no_data_distance_km", 999)
	v.SetDefault("fusion.trends_path", "data/trends_scores.json")
	v.SetDefault("fusion.dual.business", 0.30)
	v.SetDefault("fusion.dual.sentiment", 0.25)
	v.SetDefault("fusion.dual.transcript", 0.25)
	v.SetDefault("fusion.dual.trend", 0.20)
	v.SetDefault("fusion.dual.floor", 25)
	v.SetDefault("fusion.dual.ceiling", 90)
	v.SetDefault("fusion.single.business", 0.40)
	v.SetDefault("fusion.single.sentiment", 0.40)
	v.SetDefault("fusion.single.trend", 0.20)
	v.SetDefault("fusion.single.floor", 20)
	v.SetDefault("fusion.single.ceiling", 92)
	v.SetDefault("fusion.neutral_ratio", 0.5)
	v.SetDefault("fusion.neutral_demand", 25)
	v.SetDefault("output.dir", "data/processed")
	v.SetDefault("output.top_n", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "lotscout.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.LexiconPath != "" {
		lex, err := LoadLexiconFile(cfg.LexiconPath)
		if err != nil {
			return nil, eris.Wrap(err, "config: load lexicon file")
		}
		cfg.Lexicon = lex
	}
	if len(cfg.Lexicon) == 0 {
		cfg.Lexicon = DefaultLexicon()
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	if len(c.Analysis.SaturationSteps) == 0 {
		return eris.New("config: analysis.saturation_steps must not be empty")
	}
	for i, s := range c.Analysis.SaturationSteps {
		if s < 0 || s > 1 {
			return eris.Errorf("config: saturation step %d out of [0,1]: %v", i, s)
		}
	}
	if c.Analysis.CompetitionRadiusM <= 0 || c.Analysis.TrafficRadiusM <= 0 {
		return eris.New("config: buffer radii must be positive")
	}
	for _, scheme := range []struct {
		name string
		w    WeightScheme
	}{{"dual", c.Fusion.Dual}, {"single", c.Fusion.Single}} {
		if sum := scheme.w.Sum(); sum < 0.999 || sum > 1.001 {
			return eris.Errorf("config: fusion.%s weights sum to %v, want 1.0", scheme.name, sum)
		}
		if scheme.w.Floor >= scheme.w.Ceiling {
			return eris.Errorf("config: fusion.%s calibration floor %v >= ceiling %v",
				scheme.name, scheme.w.Floor, scheme.w.Ceiling)
		}
	}
	if c.Compose.Policy != "linear" && c.Compose.Policy != "additive" {
		return eris.Errorf("config: compose.policy must be linear or additive (got %q)", c.Compose.Policy)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
