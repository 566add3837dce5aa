package metrics

import "github.com/go-gl/mathgl/mgl32"

// PeakAccel reports the largest applied linear acceleration magnitude.
type PeakAccel struct {
	peak float32
}

func NewPeakAccel() *PeakAccel { return &PeakAccel{} }

func (p *PeakAccel) Name() string { return "peak_accel" }

func (p *PeakAccel) Observe(accel, angAccel mgl32.Vec3, t float32) {
	if l := accel.Len(); l > p.peak {
		p.peak = l
	}
}

func (p *PeakAccel) Value() float32 { return p.peak }
func (p *PeakAccel) Reset()         { p.peak = 0 }

// PeakAngularAccel reports the largest applied angular acceleration
// magnitude.
type PeakAngularAccel struct {
	peak float32
}

func NewPeakAngularAccel() *PeakAngularAccel { return &PeakAngularAccel{} }

func (p *PeakAngularAccel) Name() string { return "peak_angular_accel" }

func (p *PeakAngularAccel) Observe(accel, angAccel mgl32.Vec3, t float32) {
	if l := angAccel.Len(); l > p.peak {
		p.peak = l
	}
}

func (p *PeakAngularAccel) Value() float32 { return p.peak }
func (p *PeakAngularAccel) Reset()         { p.peak = 0 }
