package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration, loaded from YAML and SMUDGE_* env vars.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Window  WindowConfig  `mapstructure:"window" yaml:"window"`
	Effects EffectsConfig `mapstructure:"effects" yaml:"effects"`
	Input   InputConfig   `mapstructure:"input" yaml:"input"`
	Wave    WaveConfig    `mapstructure:"wave" yaml:"wave"`
	Audio   AudioConfig   `mapstructure:"audio" yaml:"audio"`
	Record  RecordConfig  `mapstructure:"record" yaml:"record"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Title  string `mapstructure:"title" yaml:"title"`
	TPS    int    `mapstructure:"tps" yaml:"tps"`
}

// Range is an inclusive-exclusive interval sampled uniformly.
type Range struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Lerp maps u in [0,1) onto the range.
func (r Range) Lerp(u float64) float64 {
	return r.Min + (r.Max-r.Min)*u
}

func (r Range) validate(name string) error {
	if r.Max < r.Min {
		return fmt.Errorf("%s: max (%v) is below min (%v)", name, r.Max, r.Min)
	}
	return nil
}

// DurationRange is Range for time spans.
type DurationRange struct {
	Min time.Duration `mapstructure:"min" yaml:"min"`
	Max time.Duration `mapstructure:"max" yaml:"max"`
}

func (r DurationRange) Lerp(u float64) time.Duration {
	return r.Min + time.Duration(float64(r.Max-r.Min)*u)
}

func (r DurationRange) validate(name string) error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("%s: invalid range [%v, %v]", name, r.Min, r.Max)
	}
	return nil
}

type EffectsConfig struct {
	// FrameStep is the simulated time a particle ages per tick.
	FrameStep time.Duration `mapstructure:"frame_step" yaml:"frame_step"`
	Trail     TrailConfig   `mapstructure:"trail" yaml:"trail"`
	Ripple    RippleConfig  `mapstructure:"ripple" yaml:"ripple"`
	Small     SpawnConfig   `mapstructure:"small" yaml:"small"`
	Large     SpawnConfig   `mapstructure:"large" yaml:"large"`
	Special   SpecialConfig `mapstructure:"special" yaml:"special"`
	Blur      BlurConfig    `mapstructure:"blur" yaml:"blur"`
	Bounds    float64       `mapstructure:"bounds_margin" yaml:"bounds_margin"`
	Lens      LensConfig    `mapstructure:"lens" yaml:"lens"`
}

type TrailConfig struct {
	DecayRate float64 `mapstructure:"decay_rate" yaml:"decay_rate"` // intensity per second
	MaxPoints int     `mapstructure:"max_points" yaml:"max_points"`
	Radius    float64 `mapstructure:"radius" yaml:"radius"`
	Jitter    float64 `mapstructure:"jitter" yaml:"jitter"`
}

type RippleConfig struct {
	Duration     time.Duration `mapstructure:"duration" yaml:"duration"`
	MaxRadius    float64       `mapstructure:"max_radius" yaml:"max_radius"`
	FadeRate     float64       `mapstructure:"fade_rate" yaml:"fade_rate"`
	MoveInterval time.Duration `mapstructure:"move_interval" yaml:"move_interval"`
	TapInterval  time.Duration `mapstructure:"tap_interval" yaml:"tap_interval"`
	MoveCap      int           `mapstructure:"move_cap" yaml:"move_cap"`
	TapCap       int           `mapstructure:"tap_cap" yaml:"tap_cap"`
	Rings        int           `mapstructure:"rings" yaml:"rings"`
	RingSpacing  float64       `mapstructure:"ring_spacing" yaml:"ring_spacing"`
}

// SpawnConfig tunes one particle size class.
type SpawnConfig struct {
	Chance          float64       `mapstructure:"chance" yaml:"chance"`
	MinInterval     time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	MaxCount        int           `mapstructure:"max_count" yaml:"max_count"`
	StraightChance  float64       `mapstructure:"straight_chance" yaml:"straight_chance"`
	Size            Range         `mapstructure:"size" yaml:"size"`
	Speed           Range         `mapstructure:"speed" yaml:"speed"`
	Lateral         float64       `mapstructure:"lateral" yaml:"lateral"`
	OrbitRadius     Range         `mapstructure:"orbit_radius" yaml:"orbit_radius"`
	AngularVelocity Range         `mapstructure:"angular_velocity" yaml:"angular_velocity"`
	StraightLife    DurationRange `mapstructure:"straight_life" yaml:"straight_life"`
	OrbitalLife     DurationRange `mapstructure:"orbital_life" yaml:"orbital_life"`
}

type SpecialConfig struct {
	Interval DurationRange `mapstructure:"interval" yaml:"interval"`
	Distance Range         `mapstructure:"distance" yaml:"distance"` // multiples of the viewport diagonal
	// Crossing is how long one viewport diagonal takes.
	Crossing time.Duration `mapstructure:"crossing" yaml:"crossing"`
	Size     Range         `mapstructure:"size" yaml:"size"`
}

type BlurConfig struct {
	Count        int     `mapstructure:"count" yaml:"count"`
	Size         Range   `mapstructure:"size" yaml:"size"`
	ResetSize    Range   `mapstructure:"reset_size" yaml:"reset_size"`
	Blur         Range   `mapstructure:"blur" yaml:"blur"`
	Speed        float64 `mapstructure:"speed" yaml:"speed"`
	ResetSpeed   float64 `mapstructure:"reset_speed" yaml:"reset_speed"`
	ResizeChance float64 `mapstructure:"resize_chance" yaml:"resize_chance"`
	TurnChance   float64 `mapstructure:"turn_chance" yaml:"turn_chance"`
}

type LensConfig struct {
	Radius     float64 `mapstructure:"radius" yaml:"radius"`
	ClipRadius float64 `mapstructure:"clip_radius" yaml:"clip_radius"`
	ZoomDepth  float64 `mapstructure:"zoom_depth" yaml:"zoom_depth"`
	ZoomSpeed  float64 `mapstructure:"zoom_speed" yaml:"zoom_speed"`
	Rings      int     `mapstructure:"rings" yaml:"rings"`
	GlowRadius float64 `mapstructure:"glow_radius" yaml:"glow_radius"`
}

type InputConfig struct {
	// Wander is one of "auto", "on" or "off".
	Wander         string        `mapstructure:"wander" yaml:"wander"`
	WanderInterval DurationRange `mapstructure:"wander_interval" yaml:"wander_interval"`
	WanderDuration DurationRange `mapstructure:"wander_duration" yaml:"wander_duration"`
	WanderPadding  float64       `mapstructure:"wander_padding" yaml:"wander_padding"`
	SmallViewport  int           `mapstructure:"small_viewport" yaml:"small_viewport"`
}

type WaveConfig struct {
	BaseIntensity float64 `mapstructure:"base_intensity" yaml:"base_intensity"`
	Variation     float64 `mapstructure:"variation" yaml:"variation"`
}

type AudioConfig struct {
	Gain      float64 `mapstructure:"gain" yaml:"gain"`
	Smoothing float64 `mapstructure:"smoothing" yaml:"smoothing"`
	RingSize  int     `mapstructure:"ring_size" yaml:"ring_size"`
}

type RecordConfig struct {
	Frames    int    `mapstructure:"frames" yaml:"frames"`
	FPS       int    `mapstructure:"fps" yaml:"fps"`
	OutDir    string `mapstructure:"out_dir" yaml:"out_dir"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
	Seed      uint64 `mapstructure:"seed" yaml:"seed"`
	DumpState bool   `mapstructure:"dump_state" yaml:"dump_state"`
}

// NewDefaultConfig returns a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "smudge")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- Window --
	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 768)
	v.SetDefault("window.title", "Cursor Smudge - O: open SVG, A: open audio, Space: pause, Esc/Q: quit")
	v.SetDefault("window.tps", 60)

	// -- Effects --
	v.SetDefault("effects.frame_step", "16ms")
	v.SetDefault("effects.bounds_margin", 100.0)

	v.SetDefault("effects.trail.decay_rate", 1.5)
	v.SetDefault("effects.trail.max_points", 30)
	v.SetDefault("effects.trail.radius", 120.0)
	v.SetDefault("effects.trail.jitter", 5.0)

	v.SetDefault("effects.ripple.duration", "2s")
	v.SetDefault("effects.ripple.max_radius", 500.0)
	v.SetDefault("effects.ripple.fade_rate", 0.8)
	v.SetDefault("effects.ripple.move_interval", "600ms")
	v.SetDefault("effects.ripple.tap_interval", "0s")
	v.SetDefault("effects.ripple.move_cap", 15)
	v.SetDefault("effects.ripple.tap_cap", 5)
	v.SetDefault("effects.ripple.rings", 6)
	v.SetDefault("effects.ripple.ring_spacing", 50.0)

	v.SetDefault("effects.small.chance", 0.05)
	v.SetDefault("effects.small.min_interval", "100ms")
	v.SetDefault("effects.small.max_count", 4)
	v.SetDefault("effects.small.straight_chance", 0.5)
	v.SetDefault("effects.small.size", map[string]any{"min": 1.0, "max": 1.0})
	v.SetDefault("effects.small.speed", map[string]any{"min": 15.0, "max": 40.0})
	v.SetDefault("effects.small.lateral", 1.0)
	v.SetDefault("effects.small.orbit_radius", map[string]any{"min": 50.0, "max": 250.0})
	v.SetDefault("effects.small.angular_velocity", map[string]any{"min": 0.05, "max": 0.2})
	v.SetDefault("effects.small.straight_life", map[string]any{"min": "1s", "max": "3s"})
	v.SetDefault("effects.small.orbital_life", map[string]any{"min": "2s", "max": "5s"})

	v.SetDefault("effects.large.chance", 0.008)
	v.SetDefault("effects.large.min_interval", "500ms")
	v.SetDefault("effects.large.max_count", 2)
	v.SetDefault("effects.large.straight_chance", 0.6)
	v.SetDefault("effects.large.size", map[string]any{"min": 8.0, "max": 20.0})
	v.SetDefault("effects.large.speed", map[string]any{"min": 8.0, "max": 20.0})
	v.SetDefault("effects.large.lateral", 1.5)
	v.SetDefault("effects.large.orbit_radius", map[string]any{"min": 100.0, "max": 400.0})
	v.SetDefault("effects.large.angular_velocity", map[string]any{"min": 0.02, "max": 0.1})
	v.SetDefault("effects.large.straight_life", map[string]any{"min": "3s", "max": "7s"})
	v.SetDefault("effects.large.orbital_life", map[string]any{"min": "4s", "max": "9s"})

	v.SetDefault("effects.special.interval", map[string]any{"min": "2s", "max": "4s"})
	v.SetDefault("effects.special.distance", map[string]any{"min": 1.5, "max": 3.0})
	v.SetDefault("effects.special.crossing", "300ms")
	v.SetDefault("effects.special.size", map[string]any{"min": 2.0, "max": 4.0})

	v.SetDefault("effects.blur.count", 8)
	v.SetDefault("effects.blur.size", map[string]any{"min": 200.0, "max": 500.0})
	v.SetDefault("effects.blur.reset_size", map[string]any{"min": 150.0, "max": 550.0})
	v.SetDefault("effects.blur.blur", map[string]any{"min": 1.0, "max": 9.0})
	v.SetDefault("effects.blur.speed", 0.5)
	v.SetDefault("effects.blur.reset_speed", 0.8)
	v.SetDefault("effects.blur.resize_chance", 0.01)
	v.SetDefault("effects.blur.turn_chance", 0.005)

	v.SetDefault("effects.lens.radius", 250.0)
	v.SetDefault("effects.lens.clip_radius", 200.0)
	v.SetDefault("effects.lens.zoom_depth", 0.3)
	v.SetDefault("effects.lens.zoom_speed", 1.5)
	v.SetDefault("effects.lens.rings", 4)
	v.SetDefault("effects.lens.glow_radius", 150.0)

	// -- Input --
	v.SetDefault("input.wander", "auto")
	v.SetDefault("input.wander_interval", map[string]any{"min": "2500ms", "max": "5s"})
	v.SetDefault("input.wander_duration", map[string]any{"min": "1s", "max": "1500ms"})
	v.SetDefault("input.wander_padding", 150.0)
	v.SetDefault("input.small_viewport", 768)

	// -- Wave --
	v.SetDefault("wave.base_intensity", 3.0)
	v.SetDefault("wave.variation", 1.0)

	// -- Audio --
	v.SetDefault("audio.gain", 4.0)
	v.SetDefault("audio.smoothing", 0.6)
	v.SetDefault("audio.ring_size", 8192)

	// -- Record --
	v.SetDefault("record.frames", 120)
	v.SetDefault("record.fps", 60)
	v.SetDefault("record.out_dir", "frames")
	v.SetDefault("record.workers", 4)
	v.SetDefault("record.seed", 1)
	v.SetDefault("record.dump_state", false)
}

// NewConfigFromViper unmarshals and validates a configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("window.tps must be a positive integer")
	}
	if err := c.Effects.Validate(); err != nil {
		return err
	}
	switch c.Input.Wander {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("input.wander must be auto, on or off, got %q", c.Input.Wander)
	}
	if err := c.Input.WanderInterval.validate("input.wander_interval"); err != nil {
		return err
	}
	if err := c.Input.WanderDuration.validate("input.wander_duration"); err != nil {
		return err
	}
	if c.Audio.Smoothing < 0 || c.Audio.Smoothing >= 1 {
		return fmt.Errorf("audio.smoothing must be in [0, 1)")
	}
	if c.Audio.RingSize <= 0 {
		return fmt.Errorf("audio.ring_size must be a positive integer")
	}
	if c.Record.FPS <= 0 {
		return fmt.Errorf("record.fps must be a positive integer")
	}
	if c.Record.Workers <= 0 {
		return fmt.Errorf("record.workers must be a positive integer")
	}
	return nil
}

// Validate checks the effect tuning.
func (e *EffectsConfig) Validate() error {
	if e.FrameStep <= 0 {
		return fmt.Errorf("effects.frame_step must be positive")
	}
	if e.Trail.DecayRate <= 0 {
		return fmt.Errorf("effects.trail.decay_rate must be positive")
	}
	if e.Trail.MaxPoints <= 0 {
		return fmt.Errorf("effects.trail.max_points must be a positive integer")
	}
	if e.Ripple.Duration <= 0 {
		return fmt.Errorf("effects.ripple.duration must be positive")
	}
	if e.Ripple.MoveCap <= 0 || e.Ripple.TapCap <= 0 {
		return fmt.Errorf("effects.ripple caps must be positive integers")
	}
	for name, s := range map[string]SpawnConfig{"effects.small": e.Small, "effects.large": e.Large} {
		if s.Chance < 0 || s.Chance > 1 {
			return fmt.Errorf("%s.chance must be in [0, 1]", name)
		}
		if s.MaxCount <= 0 {
			return fmt.Errorf("%s.max_count must be a positive integer", name)
		}
		if s.Size.Min <= 0 {
			return fmt.Errorf("%s.size must be positive", name)
		}
		for field, r := range map[string]Range{"size": s.Size, "speed": s.Speed, "orbit_radius": s.OrbitRadius, "angular_velocity": s.AngularVelocity} {
			if err := r.validate(name + "." + field); err != nil {
				return err
			}
		}
		if err := s.StraightLife.validate(name + ".straight_life"); err != nil {
			return err
		}
		if err := s.OrbitalLife.validate(name + ".orbital_life"); err != nil {
			return err
		}
	}
	if err := e.Special.Interval.validate("effects.special.interval"); err != nil {
		return err
	}
	if e.Special.Crossing <= 0 {
		return fmt.Errorf("effects.special.crossing must be positive")
	}
	if e.Blur.Count < 0 {
		return fmt.Errorf("effects.blur.count must not be negative")
	}
	return nil
}
