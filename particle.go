package arbor

import (
	"math"
	"math/rand/v2"
)

// particle holds per-particle simulation state alongside its pooled node.
type particle struct {
	node       *Node
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64 // initial lifetime (for computing t)
	startScale float64
	endScale   float64
	startAlpha float64
	endAlpha   float64
}

// EmitterConfig controls how particles are spawned and behave.
type EmitterConfig struct {
	// MaxParticles is the pool size. New particles are silently dropped when full.
	MaxParticles int
	// EmitRate is the number of particles spawned per second.
	EmitRate float64
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range
	// Speed is the range of initial particle speeds in pixels per second.
	Speed Range
	// Angle is the range of emission angles in radians.
	Angle Range
	// StartScale is the range of scale factors at birth, interpolated to EndScale over lifetime.
	StartScale Range
	// EndScale is the range of scale factors at death.
	EndScale Range
	// StartAlpha is the range of alpha values at birth, interpolated to EndAlpha over lifetime.
	StartAlpha Range
	// EndAlpha is the range of alpha values at death.
	EndAlpha Range
	// Gravity is the constant acceleration applied to all particles each frame.
	Gravity Vec2
	// Texture is rendered by each particle sprite.
	Texture *Texture
	// Blend is the compositing mode assigned to each particle sprite.
	Blend BlendMode
}

// ParticleEmitter simulates a pool of particles as sprite children of a host
// container node. The emitter writes particle state through the node setters,
// so particles flow through the same dirty-flag synchronization as any other
// node; the renderer side needs no particle-specific path.
//
// There is no global update loop; call Update(dt) each frame.
type ParticleEmitter struct {
	config    EmitterConfig
	host      *Node
	particles []particle
	alive     int
	emitAccum float64
	active    bool
}

// NewParticleEmitter creates an emitter with a preallocated sprite pool parented
// under host. Pooled sprites start invisible and are recycled across particle
// lifetimes, so the child list length stays fixed at the pool size.
func NewParticleEmitter(host *Node, cfg EmitterConfig) *ParticleEmitter {
	max := cfg.MaxParticles
	if max <= 0 {
		max = 128
	}
	e := &ParticleEmitter{
		config:    cfg,
		host:      host,
		particles: make([]particle, max),
	}
	for i := range e.particles {
		s := NewSprite("particle", cfg.Texture)
		s.SetVisible(false)
		s.SetBlend(cfg.Blend)
		host.AddChild(s)
		e.particles[i].node = s
	}
	return e
}

// Start begins emitting particles.
func (e *ParticleEmitter) Start() {
	e.active = true
}

// Stop stops emitting new particles. Existing particles continue to live out.
func (e *ParticleEmitter) Stop() {
	e.active = false
}

// Reset stops emitting and kills all alive particles.
func (e *ParticleEmitter) Reset() {
	e.active = false
	for i := 0; i < e.alive; i++ {
		e.particles[i].node.SetVisible(false)
	}
	e.alive = 0
	e.emitAccum = 0
}

// IsActive reports whether the emitter is currently emitting new particles.
func (e *ParticleEmitter) IsActive() bool {
	return e.active
}

// AliveCount returns the number of alive particles.
func (e *ParticleEmitter) AliveCount() int {
	return e.alive
}

// Config returns a pointer to the emitter's config for live tuning. Pool size,
// texture and blend mode are fixed at construction.
func (e *ParticleEmitter) Config() *EmitterConfig {
	return &e.config
}

// Update advances particle simulation by dt seconds. If the host node has been
// disposed the emitter deactivates and does nothing.
func (e *ParticleEmitter) Update(dt float64) {
	if e.host.IsDisposed() {
		e.active = false
		e.alive = 0
		return
	}

	gx := e.config.Gravity.X * dt
	gy := e.config.Gravity.Y * dt

	// Update existing particles, swap-remove dead ones. The swap exchanges
	// node pointers too so dead slots keep their recycled sprite.
	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			p.node.SetVisible(false)
			e.alive--
			e.particles[i], e.particles[e.alive] = e.particles[e.alive], e.particles[i]
			continue
		}

		p.vx += gx
		p.vy += gy

		n := p.node
		n.SetPosition(n.X+p.vx*dt, n.Y+p.vy*dt)

		t := 1.0 - p.life/p.maxLife
		s := lerp(p.startScale, p.endScale, t)
		n.SetScale(s, s)
		n.SetAlpha(lerp(p.startAlpha, p.endAlpha, t))

		i++
	}

	// Emit new particles.
	if e.active && e.config.EmitRate > 0 {
		e.emitAccum += e.config.EmitRate * dt
		for e.emitAccum >= 1.0 {
			e.emitAccum -= 1.0
			if e.alive < len(e.particles) {
				e.spawnParticle()
			}
		}
	}
}

// spawnParticle initializes the particle at slot e.alive and increments alive.
func (e *ParticleEmitter) spawnParticle() {
	p := &e.particles[e.alive]

	angle := e.config.Angle.Random()
	speed := e.config.Speed.Random()
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed

	p.life = e.config.Lifetime.Random()
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = e.config.StartScale.Random()
	p.endScale = e.config.EndScale.Random()
	p.startAlpha = e.config.StartAlpha.Random()
	p.endAlpha = e.config.EndAlpha.Random()

	n := p.node
	n.SetPosition(0, 0)
	n.SetScale(p.startScale, p.startScale)
	n.SetAlpha(p.startAlpha)
	n.SetVisible(true)

	e.alive++
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}
