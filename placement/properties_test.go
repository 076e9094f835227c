package placement_test

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memplace/placement"
)

type op struct {
	release bool
	req     placement.Request
}

func randomOps(rng *rand.Rand, totalSize, n int) []op {
	ops := make([]op, 0, n)

	for i := 0; i < n; i++ {
		owner := fmt.Sprintf("P%d", rng.Intn(6))

		if rng.Intn(4) == 0 {
			ops = append(ops, op{release: true, req: placement.Request{Owner: owner}})
			continue
		}

		ops = append(ops, op{req: placement.Request{
			Policy: placement.Policies()[rng.Intn(4)],
			Owner:  owner,
			Length: 1 + rng.Intn(totalSize/3),
			Cursor: rng.Intn(totalSize),
		}})
	}

	return ops
}

func candidates(space *placement.AddressSpace, length int) []int {
	var offsets []int

	for i := 0; i <= space.TotalSize()-length; i++ {
		if space.IsFree(i, length) {
			offsets = append(offsets, i)
		}
	}

	return offsets
}

func invariantsMustHold(space *placement.AddressSpace) {
	regions := space.Regions()

	for i, a := range regions {
		Expect(a.Length).To(BeNumerically(">", 0))
		Expect(a.Start).To(BeNumerically(">=", 0))
		Expect(a.End()).To(BeNumerically("<=", space.TotalSize()))

		for _, b := range regions[i+1:] {
			Expect(a.End() <= b.Start || b.End() <= a.Start).
				To(BeTrue(), "%v overlaps %v", a, b)
		}
	}

	st := space.Stats()
	Expect(st.Used + st.Free).To(Equal(space.TotalSize()))

	occupied := 0
	for _, c := range space.Cells() {
		if c != "" {
			occupied++
		}
	}
	Expect(occupied).To(Equal(st.Used))
}

var _ = Describe("Placement properties", func() {
	const (
		totalSize = 40
		numOps    = 400
	)

	var (
		rng *rand.Rand
	)

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(2024))
	})

	It("should keep regions disjoint, in bounds and conserved", func() {
		space := placement.NewAddressSpace("Mem", totalSize)

		for _, o := range randomOps(rng, totalSize, numOps) {
			if o.release {
				space.Release(o.req.Owner)
			} else {
				_, err := space.Allocate(o.req)
				Expect(err).ToNot(HaveOccurred())
			}

			invariantsMustHold(space)
		}
	})

	It("should place identically when a sequence is replayed", func() {
		ops := randomOps(rng, totalSize, numOps)

		replay := func() []placement.Placement {
			space := placement.NewAddressSpace("Mem", totalSize)
			results := []placement.Placement{}

			for _, o := range ops {
				if o.release {
					space.Release(o.req.Owner)
					continue
				}

				p, err := space.Allocate(o.req)
				Expect(err).ToNot(HaveOccurred())
				results = append(results, p)
			}

			return results
		}

		Expect(replay()).To(Equal(replay()))
	})

	It("should choose the lowest offset with minimal waste for Best-Fit", func() {
		space := placement.NewAddressSpace("Mem", totalSize)

		for _, o := range randomOps(rng, totalSize, numOps) {
			if o.release {
				space.Release(o.req.Owner)
				continue
			}

			wastes := map[int]int{}
			for _, c := range candidates(space, o.req.Length) {
				wastes[c] = space.WasteAfter(c, o.req.Length)
			}

			p, err := space.BestFit(o.req.Owner, o.req.Length)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Placed).To(Equal(len(wastes) > 0))

			if !p.Placed {
				continue
			}

			chosen := wastes[p.Offset]
			for c, w := range wastes {
				Expect(chosen).To(BeNumerically("<=", w))
				if w == chosen {
					Expect(p.Offset).To(BeNumerically("<=", c))
				}
			}
		}
	})

	It("should choose the lowest offset with maximal waste for Worst-Fit", func() {
		space := placement.NewAddressSpace("Mem", totalSize)

		for _, o := range randomOps(rng, totalSize, numOps) {
			if o.release {
				space.Release(o.req.Owner)
				continue
			}

			wastes := map[int]int{}
			for _, c := range candidates(space, o.req.Length) {
				wastes[c] = space.WasteAfter(c, o.req.Length)
			}

			p, err := space.WorstFit(o.req.Owner, o.req.Length)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Placed).To(Equal(len(wastes) > 0))

			if !p.Placed {
				continue
			}

			chosen := wastes[p.Offset]
			for c, w := range wastes {
				Expect(chosen).To(BeNumerically(">=", w))
				if w == chosen {
					Expect(p.Offset).To(BeNumerically("<=", c))
				}
			}
		}
	})

	It("should wrap below the cursor only when nothing fits above it", func() {
		space := placement.NewAddressSpace("Mem", totalSize)

		for _, o := range randomOps(rng, totalSize, numOps) {
			if o.release {
				space.Release(o.req.Owner)
				continue
			}

			aboveCursor := false
			for _, c := range candidates(space, o.req.Length) {
				if c >= o.req.Cursor {
					aboveCursor = true
				}
			}

			p, err := space.CircularFit(o.req.Owner, o.req.Length, o.req.Cursor)
			Expect(err).ToNot(HaveOccurred())

			if p.Placed && !aboveCursor {
				Expect(p.Offset).To(BeNumerically("<", o.req.Cursor))
			}
			if p.Placed && aboveCursor {
				Expect(p.Offset).To(BeNumerically(">=", o.req.Cursor))
			}
		}
	})

	It("should free everything an owner held on release", func() {
		space := placement.NewAddressSpace("Mem", totalSize)

		for _, o := range randomOps(rng, totalSize, numOps) {
			if !o.release {
				_, err := space.Allocate(o.req)
				Expect(err).ToNot(HaveOccurred())
				continue
			}

			held := space.RegionsOf(o.req.Owner)
			space.Release(o.req.Owner)

			Expect(space.RegionsOf(o.req.Owner)).To(BeEmpty())
			for _, r := range held {
				Expect(space.IsFree(r.Start, r.Length)).To(BeTrue())
			}
		}
	})

	It("should render the same snapshot twice", func() {
		space := placement.NewAddressSpace("Mem", totalSize)

		for _, o := range randomOps(rng, totalSize, 50) {
			if !o.release {
				_, _ = space.Allocate(o.req)
			}
		}

		first := space.Render()
		Expect(space.Render()).To(Equal(first))
		Expect(first).To(HaveLen(3 * totalSize))
	})
})
