package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the name of the config file looked up in the config directory
const FileName = "siteview.cfg.json"

// ServerConfig holds HTTP viewer settings
type ServerConfig struct {
	Address        string        `json:"address" mapstructure:"address"`
	ReadTimeout    time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `json:"writeTimeout" mapstructure:"writeTimeout"`
	GinMode        string        `json:"ginMode" mapstructure:"ginMode"`
	CacheSize      int           `json:"cacheSize" mapstructure:"cacheSize"`
	StaticDir      string        `json:"staticDir" mapstructure:"staticDir"` // map backgrounds live under <staticDir>/maps
	StatusInterval time.Duration `json:"statusInterval" mapstructure:"statusInterval"`
}

// DatasetConfig selects where the analysis document is loaded from
type DatasetConfig struct {
	Source       string        `json:"source" mapstructure:"source"` // file, http or database
	Path         string        `json:"path" mapstructure:"path"`
	URL          string        `json:"url" mapstructure:"url"`
	DemoFile     string        `json:"demoFile" mapstructure:"demoFile"`
	FetchTimeout time.Duration `json:"fetchTimeout" mapstructure:"fetchTimeout"`
}

// MapsConfig points at the map registry and the default site
type MapsConfig struct {
	Path        string `json:"path" mapstructure:"path"` // empty uses the built-in registry
	DefaultMap  string `json:"defaultMap" mapstructure:"defaultMap"`
	DefaultSite string `json:"defaultSite" mapstructure:"defaultSite"`
}

// RenderConfig holds trajectory visual weight bounds
type RenderConfig struct {
	MinStroke    float64 `json:"minStroke" mapstructure:"minStroke"`
	MaxStroke    float64 `json:"maxStroke" mapstructure:"maxStroke"`
	MinOpacity   float64 `json:"minOpacity" mapstructure:"minOpacity"`
	MaxOpacity   float64 `json:"maxOpacity" mapstructure:"maxOpacity"`
	TopPositions int     `json:"topPositions" mapstructure:"topPositions"`
}

// HeatmapConfig holds area blob sizing and color normalization
type HeatmapConfig struct {
	MinSize     float64 `json:"minSize" mapstructure:"minSize"`
	ScaleFactor float64 `json:"scaleFactor" mapstructure:"scaleFactor"`
	Ceiling     float64 `json:"ceiling" mapstructure:"ceiling"`
}

// DBConfig holds the database source settings
type DBConfig struct {
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Username   string `json:"username" mapstructure:"username"`
	Password   string `json:"password" mapstructure:"password"`
	Database   string `json:"database" mapstructure:"database"`
	SqlitePath string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

// InfluxConfig holds render performance reporting settings
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SetDefaults registers default values for every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.readTimeout", "10s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.ginMode", "release")
	viper.SetDefault("server.cacheSize", 256)
	viper.SetDefault("server.staticDir", "./public")
	viper.SetDefault("server.statusInterval", "30s")

	viper.SetDefault("dataset.source", "file")
	viper.SetDefault("dataset.path", "./public/data.json")
	viper.SetDefault("dataset.url", "")
	viper.SetDefault("dataset.demoFile", "")
	viper.SetDefault("dataset.fetchTimeout", "30s")

	viper.SetDefault("maps.path", "")
	viper.SetDefault("maps.defaultMap", "de_dust2")
	viper.SetDefault("maps.defaultSite", "b")

	viper.SetDefault("render.minStroke", 0.3)
	viper.SetDefault("render.maxStroke", 1.8)
	viper.SetDefault("render.minOpacity", 0.4)
	viper.SetDefault("render.maxOpacity", 0.8)
	viper.SetDefault("render.topPositions", 5)

	viper.SetDefault("heatmap.minSize", 30)
	viper.SetDefault("heatmap.scaleFactor", 4)
	viper.SetDefault("heatmap.ceiling", 30)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "csdemo")
	viper.SetDefault("db.sqlitePath", "./siteview.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "siteview")
	viper.SetDefault("influx.bucket", "viewer_performance")
	viper.SetDefault("influx.backupPath", "./logs/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "siteview")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetServerConfig returns the HTTP viewer settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Address:        viper.GetString("server.address"),
		ReadTimeout:    viper.GetDuration("server.readTimeout"),
		WriteTimeout:   viper.GetDuration("server.writeTimeout"),
		GinMode:        viper.GetString("server.ginMode"),
		CacheSize:      viper.GetInt("server.cacheSize"),
		StaticDir:      viper.GetString("server.staticDir"),
		StatusInterval: viper.GetDuration("server.statusInterval"),
	}
}

// GetDatasetConfig returns the dataset source settings.
func GetDatasetConfig() DatasetConfig {
	return DatasetConfig{
		Source:       viper.GetString("dataset.source"),
		Path:         viper.GetString("dataset.path"),
		URL:          viper.GetString("dataset.url"),
		DemoFile:     viper.GetString("dataset.demoFile"),
		FetchTimeout: viper.GetDuration("dataset.fetchTimeout"),
	}
}

// GetMapsConfig returns the map registry settings.
func GetMapsConfig() MapsConfig {
	return MapsConfig{
		Path:        viper.GetString("maps.path"),
		DefaultMap:  viper.GetString("maps.defaultMap"),
		DefaultSite: viper.GetString("maps.defaultSite"),
	}
}

// GetRenderConfig returns the trajectory weight bounds.
func GetRenderConfig() RenderConfig {
	return RenderConfig{
		MinStroke:    viper.GetFloat64("render.minStroke"),
		MaxStroke:    viper.GetFloat64("render.maxStroke"),
		MinOpacity:   viper.GetFloat64("render.minOpacity"),
		MaxOpacity:   viper.GetFloat64("render.maxOpacity"),
		TopPositions: viper.GetInt("render.topPositions"),
	}
}

// GetHeatmapConfig returns the heatmap sizing settings.
func GetHeatmapConfig() HeatmapConfig {
	return HeatmapConfig{
		MinSize:     viper.GetFloat64("heatmap.minSize"),
		ScaleFactor: viper.GetFloat64("heatmap.scaleFactor"),
		Ceiling:     viper.GetFloat64("heatmap.ceiling"),
	}
}

// GetDBConfig returns the database source settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:       viper.GetString("db.host"),
		Port:       viper.GetString("db.port"),
		Username:   viper.GetString("db.username"),
		Password:   viper.GetString("db.password"),
		Database:   viper.GetString("db.database"),
		SqlitePath: viper.GetString("db.sqlitePath"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the GELF output settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
