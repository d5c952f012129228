// Package plant turns a loaded system file into a running statespace model.
//
// statespace fixes dimensions at compile time, while a YAML file only knows
// them at run time. Build bridges the two by dispatching the file's shape
// onto one of the pre-instantiated model types (up to MaxDim per dimension,
// float64 or float32) and wrapping it behind the untyped [sim.Plant]
// interface.
package plant

import (
	"errors"
	"fmt"

	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/sim"
	ss "github.com/san-kum/ltisim/statespace"
)

// MaxDim is the largest input, state or output count Build can instantiate.
const MaxDim = 6

var (
	ErrUnsupportedShape = errors.New("plant: unsupported shape")
	ErrInputLength      = errors.New("plant: input length mismatch")
)

// Describer is implemented by plants that can print their matrices.
type Describer interface {
	Describe() string
}

func Build(cfg *config.Config) (sim.Plant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nu, nx, ny := cfg.Dims()
	if nu > MaxDim || nx > MaxDim || ny > MaxDim {
		return nil, fmt.Errorf("%w: nu=%d nx=%d ny=%d (max %d)", ErrUnsupportedShape, nu, nx, ny, MaxDim)
	}

	if cfg.Precision == "float32" {
		return withNU[float32](cfg, nu, nx, ny)
	}
	return withNU[float64](cfg, nu, nx, ny)
}

func withNU[T ss.Scalar](cfg *config.Config, nu, nx, ny int) (sim.Plant, error) {
	switch nu {
	case 0:
		return withNX[T, ss.D0](cfg, nx, ny)
	case 1:
		return withNX[T, ss.D1](cfg, nx, ny)
	case 2:
		return withNX[T, ss.D2](cfg, nx, ny)
	case 3:
		return withNX[T, ss.D3](cfg, nx, ny)
	case 4:
		return withNX[T, ss.D4](cfg, nx, ny)
	case 5:
		return withNX[T, ss.D5](cfg, nx, ny)
	case 6:
		return withNX[T, ss.D6](cfg, nx, ny)
	}
	return nil, fmt.Errorf("%w: nu=%d", ErrUnsupportedShape, nu)
}

func withNX[T ss.Scalar, NU ss.Dim](cfg *config.Config, nx, ny int) (sim.Plant, error) {
	switch nx {
	case 1:
		return withNY[T, NU, ss.D1](cfg, ny)
	case 2:
		return withNY[T, NU, ss.D2](cfg, ny)
	case 3:
		return withNY[T, NU, ss.D3](cfg, ny)
	case 4:
		return withNY[T, NU, ss.D4](cfg, ny)
	case 5:
		return withNY[T, NU, ss.D5](cfg, ny)
	case 6:
		return withNY[T, NU, ss.D6](cfg, ny)
	}
	return nil, fmt.Errorf("%w: nx=%d", ErrUnsupportedShape, nx)
}

func withNY[T ss.Scalar, NU, NX ss.Dim](cfg *config.Config, ny int) (sim.Plant, error) {
	switch ny {
	case 1:
		return newModelPlant[T, NU, NX, ss.D1](cfg)
	case 2:
		return newModelPlant[T, NU, NX, ss.D2](cfg)
	case 3:
		return newModelPlant[T, NU, NX, ss.D3](cfg)
	case 4:
		return newModelPlant[T, NU, NX, ss.D4](cfg)
	case 5:
		return newModelPlant[T, NU, NX, ss.D5](cfg)
	case 6:
		return newModelPlant[T, NU, NX, ss.D6](cfg)
	}
	return nil, fmt.Errorf("%w: ny=%d", ErrUnsupportedShape, ny)
}
