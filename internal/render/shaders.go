package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const (
	VertexFile   = "particle.vert"
	FragmentFile = "particle.frag"
)

//go:embed shaders/particle.vert shaders/particle.frag
var builtin embed.FS

// ShaderSources is the GLSL pair for the point-sprite program.
type ShaderSources struct {
	Vertex   string
	Fragment string
}

// ErrEmptyShader is returned when a shader file exists but has no content.
var ErrEmptyShader = errors.New("render: shader source is empty")

// LoadShaders reads particle.vert and particle.frag from dir. A file missing
// from dir falls back to the built-in copy; an empty dir uses the built-ins
// directly. Loaded sizes are logged.
func LoadShaders(dir string, logger *log.Logger) (ShaderSources, error) {
	vert, err := loadShader(dir, VertexFile, logger)
	if err != nil {
		return ShaderSources{}, err
	}
	frag, err := loadShader(dir, FragmentFile, logger)
	if err != nil {
		return ShaderSources{}, err
	}
	return ShaderSources{Vertex: vert, Fragment: frag}, nil
}

// BuiltinShaders returns the embedded sources.
func BuiltinShaders() ShaderSources {
	vert, _ := builtin.ReadFile("shaders/" + VertexFile)
	frag, _ := builtin.ReadFile("shaders/" + FragmentFile)
	return ShaderSources{Vertex: string(vert), Fragment: string(frag)}
}

func loadShader(dir, name string, logger *log.Logger) (string, error) {
	source := "builtin"
	var data []byte
	var err error

	if dir != "" {
		path := filepath.Join(dir, name)
		data, err = os.ReadFile(path)
		source = path
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("shader not found, using builtin", "path", path)
			data, err = nil, nil
		} else if err != nil {
			return "", fmt.Errorf("read shader: %w", err)
		}
	}
	if data == nil {
		data, err = builtin.ReadFile("shaders/" + name)
		source = "builtin"
		if err != nil {
			return "", err
		}
	}

	logger.Info("loaded shader", "file", name, "source", source, "bytes", len(data))
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyShader, source)
	}
	return string(data), nil
}
