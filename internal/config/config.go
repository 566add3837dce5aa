// Package config loads and saves retrace session configuration.
package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/karswell/retrace/internal/follow"
	"github.com/karswell/retrace/internal/replay"
)

const (
	DefaultDt            = 0.01
	DefaultDuration      = 10.0
	DefaultStride        = 1
	DefaultVelocityBlend = 0.35
)

type Config struct {
	Dt       float32 `yaml:"dt"`
	Duration float32 `yaml:"duration"`

	Follow   FollowConfig   `yaml:"follow"`
	Recorder RecorderConfig `yaml:"recorder"`
	Player   PlayerConfig   `yaml:"player"`
}

type FollowConfig struct {
	Spring          float32       `yaml:"spring"`
	Damping         float32       `yaml:"damping"`
	HoldDamping     float32       `yaml:"hold_damping"`
	HoldEpsilon     float32       `yaml:"hold_epsilon"`
	MaxAccel        float32       `yaml:"max_accel"`
	DeltaMultiplier float32       `yaml:"delta_multiplier"`
	JumpThreshold   float32       `yaml:"jump_threshold"`
	CancelGravity   bool          `yaml:"cancel_gravity"`
	AxisMask        [3]float32    `yaml:"axis_mask"`
	Rotation        AngularConfig `yaml:"rotation"`
	Upright         AngularConfig `yaml:"upright"`
}

type AngularConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Spring   float32 `yaml:"spring"`
	Damping  float32 `yaml:"damping"`
	MaxAccel float32 `yaml:"max_accel"`
}

type RecorderConfig struct {
	Stride int `yaml:"stride"`
}

type PlayerConfig struct {
	VelocityBlend  float32 `yaml:"velocity_blend"`
	PoseCorrection float32 `yaml:"pose_correction"`
	Loop           bool    `yaml:"loop"`
}

func DefaultConfig() *Config {
	p := follow.DefaultParams()
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Follow: FollowConfig{
			Spring:          p.Spring,
			Damping:         p.Damping,
			HoldDamping:     p.HoldDamping,
			HoldEpsilon:     p.HoldEpsilon,
			MaxAccel:        p.MaxAccel,
			DeltaMultiplier: p.DeltaMultiplier,
			JumpThreshold:   p.JumpThreshold,
			AxisMask:        [3]float32{1, 1, 1},
			Rotation: AngularConfig{
				Enabled: true, Spring: p.Rotation.Spring,
				Damping: p.Rotation.Damping, MaxAccel: p.Rotation.MaxAccel,
			},
			Upright: AngularConfig{
				Spring: p.Upright.Spring, Damping: p.Upright.Damping,
				MaxAccel: p.Upright.MaxAccel,
			},
		},
		Recorder: RecorderConfig{Stride: DefaultStride},
		Player: PlayerConfig{
			VelocityBlend:  DefaultVelocityBlend,
			PoseCorrection: 0.2,
			Loop:           true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FollowParams converts the config into controller parameters.
func (c *Config) FollowParams() follow.Params {
	f := c.Follow
	return follow.Params{
		Spring:          f.Spring,
		Damping:         f.Damping,
		HoldDamping:     f.HoldDamping,
		HoldEpsilon:     f.HoldEpsilon,
		MaxAccel:        f.MaxAccel,
		DeltaMultiplier: f.DeltaMultiplier,
		JumpThreshold:   f.JumpThreshold,
		CancelGravity:   f.CancelGravity,
		AxisMask:        mgl32.Vec3{f.AxisMask[0], f.AxisMask[1], f.AxisMask[2]},
		Rotation: follow.AngularParams{
			Enabled: f.Rotation.Enabled, Spring: f.Rotation.Spring,
			Damping: f.Rotation.Damping, MaxAccel: f.Rotation.MaxAccel,
		},
		Upright: follow.AngularParams{
			Enabled: f.Upright.Enabled, Spring: f.Upright.Spring,
			Damping: f.Upright.Damping, MaxAccel: f.Upright.MaxAccel,
		},
		WorldUp: mgl32.Vec3{0, 1, 0},
	}
}

// PlayerParams converts the config into playback parameters.
func (c *Config) PlayerParams() replay.PlayerParams {
	return replay.PlayerParams{
		VelocityBlend:  c.Player.VelocityBlend,
		PoseCorrection: c.Player.PoseCorrection,
		Loop:           c.Player.Loop,
	}
}
