package interview

import "sync/atomic"

// FrameClass classifies a pipeline frame for gating purposes. Control and
// lifecycle frames always pass the gate; everything else is subject to the
// seal.
type FrameClass int

const (
	FrameUser FrameClass = iota
	FrameData
	FrameLLM
	FrameSystem
	FrameControl
)

func (c FrameClass) passesWhenSealed() bool {
	return c == FrameSystem || c == FrameControl
}

// Gate is a frame filter that becomes sealed once the completion workflow
// starts. Sealing is monotone: once sealed it never unseals. Before sealing,
// every frame passes; after sealing, only system/control frames pass.
type Gate struct {
	sealed atomic.Bool
}

// NewGate returns an unsealed Gate.
func NewGate() *Gate { return &Gate{} }

// Allow reports whether a frame of the given class should pass the gate.
func (g *Gate) Allow(class FrameClass) bool {
	if class == FrameControl {
		return true
	}
	if !g.sealed.Load() {
		return true
	}
	return class.passesWhenSealed()
}

// Seal closes the gate. Idempotent.
func (g *Gate) Seal() {
	g.sealed.Store(true)
}

// Sealed reports the current seal state.
func (g *Gate) Sealed() bool {
	return g.sealed.Load()
}
