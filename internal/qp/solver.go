// Package qp solves convex quadratic programs with linear equality
// constraints. The Solver interface keeps the trajectory fitting
// formulation independent of the backend.
package qp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusSingular
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusSingular:
		return "singular"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Problem is: minimize z' Q z subject to C z = d. Q must be positive
// semidefinite and positive definite on the null space of C for the
// minimizer to be unique.
type Problem struct {
	Q *mat.SymDense
	C *mat.Dense
	D *mat.VecDense
}

type Solution struct {
	Z         *mat.VecDense
	Objective float64
	Status    Status
}

// Solver accepts a quadratic objective plus equality constraints and
// returns values and a solved/infeasible status. A non-nil error
// means the problem itself was malformed, not that solving failed.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}

// KKT solves the problem through its first-order optimality
// conditions, a single dense linear system
//
//	[ 2Q  C' ] [ z ]   [ 0 ]
//	[ C   0  ] [ l ] = [ d ]
//
// factorized with LU. A singular factorization reports
// StatusSingular; a solution that does not satisfy the constraints
// reports StatusInfeasible.
type KKT struct {
	// ResidualTol bounds the allowed constraint violation of a
	// solution that is still reported optimal.
	ResidualTol float64
}

func NewKKT() *KKT {
	return &KKT{ResidualTol: 1e-8}
}

func (s *KKT) Solve(p *Problem) (*Solution, error) {
	if p == nil || p.Q == nil || p.C == nil || p.D == nil {
		return nil, fmt.Errorf("qp: incomplete problem")
	}
	n := p.Q.SymmetricDim()
	m, nc := p.C.Dims()
	if nc != n {
		return nil, fmt.Errorf("qp: constraint matrix has %d columns, objective has %d variables", nc, n)
	}
	if p.D.Len() != m {
		return nil, fmt.Errorf("qp: constraint rhs has length %d, want %d", p.D.Len(), m)
	}

	size := n + m
	k := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k.Set(i, j, 2*p.Q.At(i, j))
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := p.C.At(i, j)
			k.Set(n+i, j, v)
			k.Set(j, n+i, v)
		}
	}

	rhs := mat.NewVecDense(size, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(n+i, p.D.AtVec(i))
	}

	var lu mat.LU
	lu.Factorize(k)

	zl := mat.NewVecDense(size, nil)
	if err := lu.SolveVecTo(zl, false, rhs); err != nil {
		if _, ill := err.(mat.Condition); !ill {
			return &Solution{Status: StatusSingular}, nil
		}
		// Ill-conditioned but solved; the residual check decides.
	}

	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := zl.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &Solution{Status: StatusSingular}, nil
		}
		z.SetVec(i, v)
	}

	if resid := s.residual(p, z); resid > s.ResidualTol*(1+mat.Norm(p.D, math.Inf(1))) {
		return &Solution{Z: z, Status: StatusInfeasible}, nil
	}

	return &Solution{
		Z:         z,
		Objective: mat.Inner(z, p.Q, z),
		Status:    StatusOptimal,
	}, nil
}

func (s *KKT) residual(p *Problem, z *mat.VecDense) float64 {
	var cz mat.VecDense
	cz.MulVec(p.C, z)
	cz.SubVec(&cz, p.D)
	return mat.Norm(&cz, math.Inf(1))
}
