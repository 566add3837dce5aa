package replay

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/karswell/retrace/internal/body"
	"github.com/karswell/retrace/internal/mathx"
)

// PlayerParams tune how hard playback pulls live bodies toward the clip.
type PlayerParams struct {
	// VelocityBlend is the fraction of the velocity error corrected per tick.
	VelocityBlend float32
	// PoseCorrection is the per-tick fraction the live pose is nudged toward
	// the recorded pose; 0 disables pose correction entirely.
	PoseCorrection float32
	// Loop restarts the clip when the clock passes the last frame.
	Loop bool
}

// DefaultPlayerParams returns the stock correction fractions.
func DefaultPlayerParams() PlayerParams {
	return PlayerParams{VelocityBlend: 0.35, PoseCorrection: 0.2, Loop: true}
}

// Player replays a clip onto live bodies: it interpolates between bracketing
// frames, re-applies recorded forces, and softly corrects live state toward
// the recording. The clip is rebased once at start so it replays aligned to
// wherever the bodies currently sit.
type Player struct {
	bodies []body.Body
	clip   *Clip
	p      PlayerParams

	clock  float32
	cursor int

	posOffset mgl32.Vec3
	rotOffset mgl32.Quat

	gravityWas []bool
	lastPose   []body.Pose
	playing    bool
	done       bool
}

// NewPlayer replays clip onto the given bodies, in clip sample order.
func NewPlayer(bodies []body.Body, clip *Clip, p PlayerParams) *Player {
	return &Player{bodies: bodies, clip: clip, p: p}
}

// Playing reports whether a session is active.
func (p *Player) Playing() bool { return p.playing }

// Done reports whether a non-looping playback has passed the last frame.
func (p *Player) Done() bool { return p.done }

// RecordedPose returns the rebased recorded pose the i-th body was last
// driven toward. Valid once playback has started.
func (p *Player) RecordedPose(i int) body.Pose { return p.lastPose[i] }

// Start validates the clip against the tracked bodies, computes the one-time
// rebasing transform from the first tracked body, and suspends gravity on
// every body for the duration of playback. No body is touched when
// validation fails.
func (p *Player) Start() error {
	if p.playing {
		return ErrAlreadyRunning
	}
	if len(p.bodies) == 0 {
		return ErrNoBodies
	}
	if p.clip == nil || len(p.clip.Frames) == 0 {
		return ErrEmptyClip
	}
	if len(p.clip.Frames[0].Samples) != len(p.bodies) {
		return ErrSampleCountMismatch
	}

	first := p.clip.Frames[0].Samples[0]
	b := p.bodies[0]
	p.rotOffset = b.Rotation().Mul(first.Rot.Inverse()).Normalize()
	p.posOffset = b.Position().Sub(p.rotOffset.Rotate(first.Pos))

	p.gravityWas = make([]bool, len(p.bodies))
	for i, b := range p.bodies {
		p.gravityWas[i] = b.GravityEnabled()
		b.SetGravityEnabled(false)
	}
	p.lastPose = make([]body.Pose, len(p.bodies))
	for i := range p.lastPose {
		p.lastPose[i] = body.Pose{Pos: p.bodies[i].Position(), Rot: p.bodies[i].Rotation()}
	}

	p.clock = 0
	p.cursor = 0
	p.done = false
	p.playing = true
	return nil
}

// Tick advances the playback clock and drives every body toward the
// interpolated recording.
func (p *Player) Tick(dt float32) {
	if !p.playing {
		return
	}

	p.clock += dt
	if p.clock > p.clip.Duration() {
		if !p.p.Loop {
			p.done = true
			return
		}
		// Seamless restart: the pose discontinuity between last and first
		// frame is accepted, not blended.
		p.clock = 0
		p.cursor = 0
	}

	// The cursor only ever moves forward within one pass.
	for p.cursor+1 < len(p.clip.Frames) && p.clip.Frames[p.cursor+1].T <= p.clock {
		p.cursor++
	}

	a := p.clip.Frames[p.cursor]
	b := a
	if p.cursor+1 < len(p.clip.Frames) {
		b = p.clip.Frames[p.cursor+1]
	}
	frac := mathx.Clamp01((p.clock - a.T) / math32.Max(mathx.Epsilon, b.T-a.T))

	for i, bd := range p.bodies {
		p.tickBody(i, bd, a.Samples[i], b.Samples[i], frac)
	}
}

func (p *Player) tickBody(i int, bd body.Body, sa, sb Sample, frac float32) {
	pos := p.rotOffset.Rotate(mathx.Lerp(sa.Pos, sb.Pos, frac)).Add(p.posOffset)
	rot := p.rotOffset.Mul(mathx.SlerpShortest(sa.Rot, sb.Rot, frac)).Normalize()
	p.lastPose[i] = body.Pose{Pos: pos, Rot: rot}
	vel := p.rotOffset.Rotate(mathx.Lerp(sa.Vel, sb.Vel, frac))
	angVel := p.rotOffset.Rotate(mathx.Lerp(sa.AngVel, sb.AngVel, frac))

	// Recorded forces are only re-applied when both bracketing samples carry
	// them; a half-bracketed force would double up at sampling boundaries.
	if sa.HasApplied && sb.HasApplied {
		bd.ApplyAcceleration(p.rotOffset.Rotate(mathx.Lerp(sa.AppliedAccel, sb.AppliedAccel, frac)))
		bd.ApplyAngularAcceleration(p.rotOffset.Rotate(mathx.Lerp(sa.AppliedAngAccel, sb.AppliedAngAccel, frac)))
	}

	// Per-tick proportional corrections, never a hard set.
	bd.SetVelocity(mathx.Lerp(bd.Velocity(), vel, p.p.VelocityBlend))
	bd.SetAngularVelocity(mathx.Lerp(bd.AngularVelocity(), angVel, p.p.VelocityBlend))

	if p.p.PoseCorrection > 0 {
		bd.SetPosition(mathx.Lerp(bd.Position(), pos, p.p.PoseCorrection))
		bd.SetRotation(mathx.SlerpShortest(bd.Rotation(), rot, p.p.PoseCorrection))
	}
}

// Stop ends playback and restores the gravity flags it suspended at Start.
func (p *Player) Stop() {
	if !p.playing {
		return
	}
	for i, b := range p.bodies {
		b.SetGravityEnabled(p.gravityWas[i])
	}
	p.playing = false
}
