package heat

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Solver invariants", func() {
	var p Params

	BeforeEach(func() {
		p = DefaultParams()
		p.Steps = 60
		p.Snapshots = nil
	})

	Context("when every boundary equals the initial guess", func() {
		BeforeEach(func() {
			p.Boundary = Boundary{Initial: 50, Inner: 50, Outer: 50, Bottom: 50, Top: 50}
		})

		It("keeps the field constant and stops at the first step", func() {
			res, err := Solve(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Converged).To(BeTrue())
			Expect(res.ConvergedStep).To(Equal(StencilMargin))
			Expect(res.History).To(HaveLen(1))
			Expect(res.History[0].MaxChange).To(BeZero())
			Expect(res.Final.Min()).To(Equal(50.0))
			Expect(res.Final.Max()).To(Equal(50.0))
		})
	})

	Context("with the reference boundary values", func() {
		It("never changes nodes within two cells of an edge", func() {
			initial := NewField(p.Geometry.Nr, p.Geometry.Nz)
			ApplyBoundaries(initial, p.Boundary)

			s, err := New(p)
			Expect(err).NotTo(HaveOccurred())

			nr, nz := p.Geometry.Nr, p.Geometry.Nz
			inBand := func(i, j int) bool {
				return i < StencilMargin || j < StencilMargin || i >= nr-StencilMargin || j >= nz-StencilMargin
			}
			s.AddObserver(ObserverFunc(func(step int, f *Field, _ float64) {
				for i := 0; i < nr; i++ {
					for j := 0; j < nz; j++ {
						if inBand(i, j) {
							Expect(f.At(i, j)).To(Equal(initial.At(i, j)), "node (%d,%d) at step %d", i, j, step)
						}
					}
				}
			}))

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(p.Steps - 2*StencilMargin))
		})

		It("changes interior nodes", func() {
			res, err := Solve(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final.At(2, 5)).NotTo(Equal(50.0))
		})
	})

	Context("with symmetric axial boundaries", func() {
		BeforeEach(func() {
			p.Boundary.Bottom = 80
			p.Boundary.Top = 80
		})

		It("produces a field mirrored about z = L/2", func() {
			res, err := Solve(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())

			nr, nz := res.Final.Dims()
			for i := 0; i < nr; i++ {
				for j := 0; j < nz/2; j++ {
					Expect(res.Final.At(i, j)).To(BeNumerically("~", res.Final.At(i, nz-1-j), 1e-9))
				}
			}
		})
	})

	Context("with symmetric radial boundaries", func() {
		BeforeEach(func() {
			p.Boundary.Inner = 70
			p.Boundary.Outer = 70
		})

		It("produces a field mirrored about the mid radius", func() {
			res, err := Solve(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())

			nr, nz := res.Final.Dims()
			for i := 0; i < nr/2; i++ {
				for j := 0; j < nz; j++ {
					Expect(res.Final.At(i, j)).To(BeNumerically("~", res.Final.At(nr-1-i, j), 1e-9))
				}
			}
		})
	})

	Context("on the minimum 5 x 5 grid", func() {
		BeforeEach(func() {
			p.Geometry.Nr = MinPoints
			p.Geometry.Nz = MinPoints
		})

		It("updates only node (2,2)", func() {
			initial := NewField(MinPoints, MinPoints)
			ApplyBoundaries(initial, p.Boundary)

			res, err := Solve(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < MinPoints; i++ {
				for j := 0; j < MinPoints; j++ {
					if i == 2 && j == 2 {
						continue
					}
					Expect(res.Final.At(i, j)).To(Equal(initial.At(i, j)))
				}
			}
			Expect(res.Final.At(2, 2)).NotTo(Equal(initial.At(2, 2)))
		})
	})
})
