package config

// Presets are named starting points for common rigs. Values not set here fall
// back to DefaultConfig when applied.
var Presets = map[string]func() *Config{
	// tight: stiff gains for rigs that must stay glued to the target.
	"tight": func() *Config {
		cfg := DefaultConfig()
		cfg.Follow.Spring = 300
		cfg.Follow.Damping = 30
		cfg.Follow.MaxAccel = 500
		cfg.Follow.Rotation.Spring = 1.2
		cfg.Follow.Rotation.Damping = 0.2
		return cfg
	},
	// loose: soft gains, visible lag, forgiving of noisy targets.
	"loose": func() *Config {
		cfg := DefaultConfig()
		cfg.Follow.Spring = 40
		cfg.Follow.Damping = 10
		cfg.Follow.MaxAccel = 80
		return cfg
	},
	// hover: gravity-cancelling follower constrained to the horizontal plane.
	"hover": func() *Config {
		cfg := DefaultConfig()
		cfg.Follow.CancelGravity = true
		cfg.Follow.AxisMask = [3]float32{1, 0, 1}
		cfg.Follow.Upright.Enabled = true
		return cfg
	},
	// capture: every-tick recording with full pose correction on playback.
	"capture": func() *Config {
		cfg := DefaultConfig()
		cfg.Recorder.Stride = 1
		cfg.Player.PoseCorrection = 1
		cfg.Player.VelocityBlend = 1
		return cfg
	},
}

// Preset returns a copy of the named preset, or nil if it does not exist.
func Preset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}
