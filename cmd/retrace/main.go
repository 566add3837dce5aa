package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/karswell/retrace/internal/body"
	"github.com/karswell/retrace/internal/config"
	"github.com/karswell/retrace/internal/follow"
	"github.com/karswell/retrace/internal/metrics"
	"github.com/karswell/retrace/internal/replay"
	"github.com/karswell/retrace/internal/sched"
	"github.com/karswell/retrace/internal/storage"
	"github.com/karswell/retrace/internal/viz"
)

var (
	dataDir  string
	dt       float32
	duration float32

	spring     float32
	damping    float32
	maxAccel   float32
	multiplier float32
	jump       float32
	cancelGrav bool

	pathName string
	stride   int
	clipName string
	live     bool

	shiftX, shiftY, shiftZ float32
	loopPlayback           bool
	poseCorrection         float32

	plotBody int
	plotAxis string

	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "retrace",
		Short: "pose-follow control with deterministic record and replay",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".retrace", "data directory")

	followCmd := &cobra.Command{
		Use:   "follow",
		Short: "drive a body after a scripted target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, false)
		},
	}
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "follow a scripted target and record a clip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, true)
		},
	}
	for _, c := range []*cobra.Command{followCmd, recordCmd} {
		c.Flags().Float32Var(&dt, "dt", config.DefaultDt, "fixed timestep")
		c.Flags().Float32Var(&duration, "time", config.DefaultDuration, "duration")
		c.Flags().Float32Var(&spring, "spring", 0, "position spring gain")
		c.Flags().Float32Var(&damping, "damping", 0, "position damping gain")
		c.Flags().Float32Var(&maxAccel, "max-accel", 0, "acceleration clamp")
		c.Flags().Float32Var(&multiplier, "multiplier", 0, "target delta multiplier")
		c.Flags().Float32Var(&jump, "jump", 0, "teleport detection distance")
		c.Flags().BoolVar(&cancelGrav, "cancel-gravity", false, "cancel gravity in the position correction")
		c.Flags().StringVar(&pathName, "path", "circle", "target path: line|circle|lissajous|teleport")
		c.Flags().IntVar(&stride, "stride", config.DefaultStride, "record every Nth tick")
		c.Flags().StringVar(&clipName, "name", "clip", "clip name prefix")
		c.Flags().BoolVar(&live, "live", false, "live terminal view")
		c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		c.Flags().StringVar(&preset, "preset", "", "named preset configuration")
	}

	playCmd := &cobra.Command{
		Use:   "play [clip_id]",
		Short: "replay a recorded clip",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	playCmd.Flags().Float32Var(&dt, "dt", config.DefaultDt, "fixed timestep")
	playCmd.Flags().Float32Var(&duration, "time", 0, "duration (0 = one clip pass)")
	playCmd.Flags().Float32Var(&shiftX, "shift-x", 0, "start offset x (exercises rebasing)")
	playCmd.Flags().Float32Var(&shiftY, "shift-y", 0, "start offset y")
	playCmd.Flags().Float32Var(&shiftZ, "shift-z", 0, "start offset z")
	playCmd.Flags().BoolVar(&loopPlayback, "loop", false, "loop the clip")
	playCmd.Flags().Float32Var(&poseCorrection, "pose-correction", 0.2, "per-tick pose correction fraction")
	playCmd.Flags().BoolVar(&live, "live", false, "live terminal view")
	playCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded clips",
		RunE:  listClips,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [clip_id]",
		Short: "plot a recorded position component",
		Args:  cobra.ExactArgs(1),
		RunE:  plotClip,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", 0, "tracked body index")
	plotCmd.Flags().StringVar(&plotAxis, "axis", "x", "position axis: x|y|z")

	exportCmd := &cobra.Command{
		Use:   "export [clip_id]",
		Short: "export clip metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportClip,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named preset configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			for name := range config.Presets {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(followCmd, recordCmd, playCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers preset, config file and changed CLI flags, in that
// order of increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if p := config.Preset(preset); p != nil {
			cfg = p
		} else {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("spring") {
		cfg.Follow.Spring = spring
	}
	if cmd.Flags().Changed("damping") {
		cfg.Follow.Damping = damping
	}
	if cmd.Flags().Changed("max-accel") {
		cfg.Follow.MaxAccel = maxAccel
	}
	if cmd.Flags().Changed("multiplier") {
		cfg.Follow.DeltaMultiplier = multiplier
	}
	if cmd.Flags().Changed("jump") {
		cfg.Follow.JumpThreshold = jump
	}
	if cmd.Flags().Changed("cancel-gravity") {
		cfg.Follow.CancelGravity = cancelGrav
	}
	if cmd.Flags().Changed("stride") {
		cfg.Recorder.Stride = stride
	}
	return cfg, nil
}

type advancer interface {
	body.TargetSource
	Advance(dt float32)
}

func makeTarget(name string) (advancer, error) {
	switch name {
	case "line":
		return &body.LineTarget{Velocity: mgl32.Vec3{1, 0, 0}}, nil
	case "circle":
		return &body.CircleTarget{Radius: 3, Omega: 0.8}, nil
	case "lissajous":
		return &body.LissajousTarget{
			Amplitude: mgl32.Vec3{3, 1, 2},
			Freq:      mgl32.Vec3{0.7, 1.3, 0.9},
		}, nil
	case "teleport":
		return &body.TeleportTarget{
			Source: &body.CircleTarget{Radius: 3, Omega: 0.8},
			Offset: mgl32.Vec3{25, 0, 0},
			At:     5,
		}, nil
	default:
		return nil, fmt.Errorf("unknown target path: %s", name)
	}
}

func runFollow(cmd *cobra.Command, record bool) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	target, err := makeTarget(pathName)
	if err != nil {
		return err
	}

	b := body.NewKinematic(1, body.Pose{Pos: target.Pose().Pos, Rot: mgl32.QuatIdent()})
	ctrl, err := follow.New(b, target, cfg.FollowParams())
	if err != nil {
		return err
	}

	loop, err := sched.New(cfg.Dt)
	if err != nil {
		return err
	}

	ms := []metrics.Metric{
		metrics.NewControlEffort(),
		metrics.NewPeakAccel(),
		metrics.NewPeakAngularAccel(),
		metrics.NewTrackingError(func() (mgl32.Vec3, mgl32.Vec3) {
			return b.Position(), target.Pose().Pos
		}),
	}

	var rec *replay.Recorder
	if record {
		rec = replay.NewRecorder([]body.Body{b}, cfg.Recorder.Stride)
		if err := rec.Start([]follow.ForceSource{ctrl}); err != nil {
			return err
		}
	}

	var clock float32
	loop.Register(target.Advance)
	loop.Register(ctrl.Tick)
	loop.Register(func(dt float32) {
		for _, m := range ms {
			m.Observe(ctrl.AppliedAccel(), ctrl.AppliedAngularAccel(), clock)
		}
		clock += dt
	})
	if rec != nil {
		loop.Register(rec.Tick)
	}
	loop.Register(b.Step)

	if live {
		hooks := viz.Hooks{
			Step: loop.Step,
			Sample: func() viz.Sample {
				return viz.Sample{
					T:         clock,
					BodyPos:   b.Position(),
					TargetPos: target.Pose().Pos,
					Accel:     ctrl.AppliedAccel(),
				}
			},
			Recalibrate: ctrl.Recalibrate,
		}
		if err := viz.Run(hooks, cfg.Dt, "follow "+pathName); err != nil {
			return err
		}
	} else {
		fmt.Printf("following %s target for %.1fs at dt=%.4f...\n", pathName, cfg.Duration, cfg.Dt)
		start := time.Now()
		if err := loop.Run(context.Background(), cfg.Duration); err != nil {
			return err
		}
		fmt.Printf("completed in %v (%d ticks)\n", time.Since(start), loop.Tick())
	}

	if rec != nil {
		clip := rec.Stop()
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		clipID, err := st.Save(clipName, clip)
		if err != nil {
			return err
		}
		fmt.Printf("clip id: %s (%d frames)\n", clipID, len(clip.Frames))
	}

	fmt.Println("\nmetrics:")
	for _, m := range ms {
		fmt.Printf("  %s: %.6f\n", m.Name(), m.Value())
	}
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	clipID := args[0]

	st := storage.New(dataDir)
	clip, err := st.Load(clipID)
	if err != nil {
		return err
	}

	params := replay.DefaultPlayerParams()
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		params = cfg.PlayerParams()
	}
	if cmd.Flags().Changed("pose-correction") {
		params.PoseCorrection = poseCorrection
	}
	if cmd.Flags().Changed("loop") {
		params.Loop = loopPlayback
	}

	// Bodies spawn at the recorded first-frame poses, optionally shifted to
	// exercise the rebasing transform.
	shift := mgl32.Vec3{shiftX, shiftY, shiftZ}
	bodies := make([]body.Body, clip.BodyCount())
	kin := make([]*body.Kinematic, clip.BodyCount())
	for i := range bodies {
		s := clip.Frames[0].Samples[i]
		kin[i] = body.NewKinematic(body.ID(i+1), body.Pose{Pos: s.Pos.Add(shift), Rot: s.Rot})
		bodies[i] = kin[i]
	}

	player := replay.NewPlayer(bodies, clip, params)
	if err := player.Start(); err != nil {
		return err
	}
	defer player.Stop()

	loop, err := sched.New(clip.FixedDeltaTime)
	if err != nil {
		return err
	}
	var clock float32
	loop.Register(func(dt float32) { clock += dt })
	loop.Register(player.Tick)
	for _, k := range kin {
		loop.Register(k.Step)
	}

	runFor := duration
	if runFor <= 0 {
		runFor = clip.Duration()
	}

	if live {
		hooks := viz.Hooks{
			Step: loop.Step,
			Sample: func() viz.Sample {
				return viz.Sample{
					T:         clock,
					BodyPos:   bodies[0].Position(),
					TargetPos: player.RecordedPose(0).Pos,
				}
			},
		}
		return viz.Run(hooks, clip.FixedDeltaTime, "play "+clipID)
	}

	fmt.Printf("replaying %s for %.1fs at dt=%.4f...\n", clipID, runFor, clip.FixedDeltaTime)
	if err := loop.Run(context.Background(), runFor); err != nil {
		return err
	}
	fmt.Printf("final body positions:\n")
	for i, b := range bodies {
		p := b.Position()
		fmt.Printf("  body %d: %.3f %.3f %.3f\n", i, p[0], p[1], p[2])
	}
	return nil
}

func listClips(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	clips, err := st.List()
	if err != nil {
		return err
	}

	if len(clips) == 0 {
		fmt.Println("no clips found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tBODIES\tFRAMES")
	for _, c := range clips {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			c.ID,
			c.Timestamp.Format("2006-01-02 15:04:05"),
			c.Duration,
			c.FixedDeltaTime,
			c.Bodies,
			c.Frames,
		)
	}
	return w.Flush()
}

func plotClip(cmd *cobra.Command, args []string) error {
	clipID := args[0]

	st := storage.New(dataDir)
	clip, err := st.Load(clipID)
	if err != nil {
		return err
	}

	if plotBody < 0 || plotBody >= clip.BodyCount() {
		return fmt.Errorf("body index %d out of range (clip has %d)", plotBody, clip.BodyCount())
	}
	axis := map[string]int{"x": 0, "y": 1, "z": 2}
	ai, ok := axis[plotAxis]
	if !ok {
		return fmt.Errorf("unknown axis: %s", plotAxis)
	}

	series := make([]float64, len(clip.Frames))
	for i, f := range clip.Frames {
		series[i] = float64(f.Samples[plotBody].Pos[ai])
	}

	fmt.Printf("clip: %s · body %d · pos.%s\n\n", clipID, plotBody, plotAxis)
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(15),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("%d frames over %.2fs", len(clip.Frames), clip.Duration())),
	))
	return nil
}

func exportClip(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.LoadMetadata(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
