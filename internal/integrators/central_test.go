package integrators_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/integrators"
	"github.com/san-kum/galaxysim/internal/physics"
)

func meanRadius(p dynamo.Particles) float64 {
	sum := 0.0
	for i := range p {
		sum += p[i].PlanarRadius()
	}
	return sum / float64(len(p))
}

func galaxy(n int, seed int64) dynamo.Particles {
	p, err := physics.NewDiskGalaxy().Generate(n, physics.NewSource(seed))
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Euler", func() {
	var (
		field *physics.CentralMass
		euler *integrators.Euler
	)

	BeforeEach(func() {
		field = physics.NewCentralMass()
		euler = integrators.NewEuler(field)
	})

	It("advances a single particle by one step of the central force", func() {
		p := dynamo.Particles{{
			Position: mgl32.Vec3{1, 0, 0},
			Velocity: mgl32.Vec3{0, 1, 0},
			Mass:     1,
		}}

		Expect(euler.Step(p, 0.01)).To(Succeed())

		ax := -25.0 / math.Pow(1.04, 1.5)
		vx := ax * 0.01
		Expect(float64(p[0].Velocity.X())).To(BeNumerically("~", vx, 1e-5))
		Expect(float64(p[0].Velocity.X())).To(BeNumerically("~", -0.2358, 1e-4))
		Expect(p[0].Velocity.Y()).To(Equal(float32(1)))
		Expect(float64(p[0].Position.X())).To(BeNumerically("~", 1+vx*0.01, 1e-6))
		Expect(float64(p[0].Position.X())).To(BeNumerically("~", 0.99764, 1e-5))
		Expect(float64(p[0].Position.Y())).To(BeNumerically("~", 0.01, 1e-7))
		Expect(p[0].Position.Z()).To(Equal(float32(0)))
	})

	It("treats dt = 0 as a bit-exact no-op", func() {
		p := galaxy(500, 11)
		before := append([]byte(nil), p.Bytes()...)

		Expect(euler.Step(p, 0)).To(Succeed())
		Expect(p.Bytes()).To(Equal(before))
	})

	It("rejects a negative dt without touching the particles", func() {
		p := galaxy(10, 1)
		before := append([]byte(nil), p.Bytes()...)

		Expect(euler.Step(p, -0.01)).To(MatchError(dynamo.ErrNegativeDt))
		Expect(euler.Step(p, float32(math.NaN()))).To(MatchError(dynamo.ErrNegativeDt))
		Expect(p.Bytes()).To(Equal(before))
	})

	It("preserves collection length", func() {
		for _, dt := range []float32{0, 0.001, 0.033, 0.5} {
			p := galaxy(123, 5)
			Expect(euler.Step(p, dt)).To(Succeed())
			Expect(p).To(HaveLen(123))
		}
	})

	It("handles an empty collection", func() {
		Expect(euler.Step(dynamo.Particles{}, 0.01)).To(Succeed())
	})

	It("keeps a particle at the origin finite", func() {
		p := dynamo.Particles{{Mass: 1}}
		Expect(euler.Step(p, 0.033)).To(Succeed())
		Expect(p.IsValid()).To(BeTrue())
	})

	It("leaves the mass untouched", func() {
		p := galaxy(50, 2)
		Expect(euler.Step(p, 0.01)).To(Succeed())
		for i := range p {
			Expect(p[i].Mass).To(Equal(float32(1)))
		}
	})

	It("does not clamp large steps", func() {
		small := dynamo.Particles{{Position: mgl32.Vec3{4, 0, 0}, Velocity: mgl32.Vec3{0, 1, 0}}}
		large := small.Clone()

		Expect(euler.Step(small, 0.01)).To(Succeed())
		Expect(euler.Step(large, 0.5)).To(Succeed())

		Expect(large[0].Position.Sub(mgl32.Vec3{4, 0, 0}).Len()).
			To(BeNumerically(">", small[0].Position.Sub(mgl32.Vec3{4, 0, 0}).Len()*10))
	})

	DescribeTable("keeps the mean radius bounded over a short run",
		func(dt float32) {
			p := galaxy(3000, 42)
			rmax := physics.NewDiskGalaxy().Radius

			for i := 0; i < 100; i++ {
				Expect(euler.Step(p, dt)).To(Succeed())
			}
			Expect(p.IsValid()).To(BeTrue())
			Expect(meanRadius(p)).To(BeNumerically("<=", rmax))
		},
		Entry("small dt", float32(0.01)),
		Entry("clamped frame dt", float32(0.033)),
	)

	Context("with damping", func() {
		It("shrinks velocity compared to the undamped step", func() {
			damped := integrators.NewEuler(field)
			damped.Damping = 0.5

			a := dynamo.Particles{{Position: mgl32.Vec3{3, 0, 0}, Velocity: mgl32.Vec3{0, 2, 0}}}
			b := a.Clone()

			Expect(euler.Step(a, 0.02)).To(Succeed())
			Expect(damped.Step(b, 0.02)).To(Succeed())

			Expect(b[0].Velocity.Len()).To(BeNumerically("~", a[0].Velocity.Len()*0.99, 1e-5))
		})

		It("is inert at zero", func() {
			a := galaxy(100, 3)
			b := a.Clone()
			withZero := integrators.NewEuler(field)
			withZero.Damping = 0

			Expect(euler.Step(a, 0.01)).To(Succeed())
			Expect(withZero.Step(b, 0.01)).To(Succeed())
			Expect(b.Bytes()).To(Equal(a.Bytes()))
		})
	})

	Context("with workers", func() {
		It("matches the serial result exactly", func() {
			serial := galaxy(5000, 9)
			parallel := serial.Clone()

			par := integrators.NewEuler(field)
			par.Workers = 4

			for i := 0; i < 10; i++ {
				Expect(euler.Step(serial, 0.016)).To(Succeed())
				Expect(par.Step(parallel, 0.016)).To(Succeed())
			}
			Expect(parallel.Bytes()).To(Equal(serial.Bytes()))
		})
	})
})

var _ = Describe("Leapfrog", func() {
	var leap *integrators.Leapfrog

	BeforeEach(func() {
		leap = integrators.NewLeapfrog(physics.NewCentralMass())
	})

	It("treats dt = 0 as a bit-exact no-op", func() {
		p := galaxy(200, 4)
		before := append([]byte(nil), p.Bytes()...)
		Expect(leap.Step(p, 0)).To(Succeed())
		Expect(p.Bytes()).To(Equal(before))
	})

	It("rejects a negative dt", func() {
		Expect(leap.Step(galaxy(1, 1), -1)).To(MatchError(dynamo.ErrNegativeDt))
	})

	It("keeps a circular orbit close to its radius", func() {
		field := physics.NewCentralMass()
		r := 4.0
		v := float32(field.CircularSpeed(r))
		p := dynamo.Particles{{Position: mgl32.Vec3{float32(r), 0, 0}, Velocity: mgl32.Vec3{0, v, 0}}}

		for i := 0; i < 2000; i++ {
			Expect(leap.Step(p, 0.005)).To(Succeed())
		}
		Expect(p[0].PlanarRadius()).To(BeNumerically("~", r, 0.05))
	})

	It("keeps the mean radius bounded over a short run", func() {
		p := galaxy(3000, 42)
		for i := 0; i < 100; i++ {
			Expect(leap.Step(p, 0.01)).To(Succeed())
		}
		Expect(meanRadius(p)).To(BeNumerically("<=", physics.NewDiskGalaxy().Radius))
	})
})

var _ = Describe("Registry", func() {
	It("builds every registered integrator", func() {
		for _, name := range integrators.Names() {
			integ, err := integrators.New(name, physics.NewCentralMass(), integrators.Options{Workers: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(integ.Step(galaxy(10, 1), 0.01)).To(Succeed())
		}
	})

	It("lists euler and leapfrog", func() {
		Expect(integrators.Names()).To(Equal([]string{"euler", "leapfrog"}))
	})

	It("rejects unknown names", func() {
		_, err := integrators.New("rk4", physics.NewCentralMass(), integrators.Options{})
		Expect(err).To(MatchError(ContainSubstring("unknown integrator")))
	})
})
