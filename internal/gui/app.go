package gui

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/export"
	"github.com/san-kum/galaxysim/internal/gpu"
	"github.com/san-kum/galaxysim/internal/physics"
	"github.com/san-kum/galaxysim/internal/render"
	"github.com/san-kum/galaxysim/internal/sim"
)

func init() {
	// GLFW and the GL context must stay on the main OS thread
	runtime.LockOSThread()
}

// App carries everything the frame loop touches.
type App struct {
	Window   *glfw.Window
	Config   *config.Config
	Sim      *sim.Simulator
	Buffer   *gpu.ParticleBuffer
	Renderer *gpu.Renderer
	Camera   *render.Camera
	Clock    *sim.FrameClock
	Logger   *log.Logger

	Seed          int64
	Running       bool
	ScreenshotDir string

	disk       *physics.DiskGalaxy
	dragging   bool
	lastX      float64
	lastY      float64
	screenshot bool
	lastTitle  float64
	err        error
}

// Run opens the window, runs the frame loop until the window closes and
// releases every GL and GLFW resource on the way out.
func Run(cfg *config.Config, logger *log.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	}

	version, err := gpu.Init()
	if err != nil {
		return err
	}
	logger.Info("opengl ready", "version", version)

	app, err := NewApp(window, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Loop()
}

// NewApp builds the disk, the GPU mirror and the renderer for an already
// current context.
func NewApp(window *glfw.Window, cfg *config.Config, logger *log.Logger) (*App, error) {
	disk, err := cfg.BuildDisk()
	if err != nil {
		return nil, err
	}
	integ, err := cfg.BuildIntegrator()
	if err != nil {
		return nil, err
	}
	shaders, err := render.LoadShaders(cfg.Render.ShaderDir, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Window:        window,
		Config:        cfg,
		Logger:        logger,
		Seed:          cfg.ResolveSeed(),
		Running:       true,
		ScreenshotDir: ".",
		disk:          disk,
	}

	particles, err := app.generate()
	if err != nil {
		return nil, err
	}

	app.Buffer = gpu.NewParticleBuffer(particles)
	app.Renderer, err = gpu.NewRenderer(shaders, app.Buffer, float32(cfg.Render.PointSize), cfg.BackgroundColor())
	if err != nil {
		app.Buffer.Delete()
		return nil, err
	}

	app.Sim = sim.New(particles, integ)
	app.Sim.SetMirror(app.Buffer)
	app.Sim.SetMaxDt(cfg.MaxDt)

	fbw, fbh := window.GetFramebufferSize()
	app.Renderer.Viewport(fbw, fbh)
	app.Camera = render.NewCamera(cfg.CameraPosition(), float32(cfg.Render.Fov), float32(cfg.Render.Near), float32(cfg.Render.Far), fbw, fbh)
	app.Clock = sim.NewFrameClock(glfw.GetTime)

	app.bindInput()

	logger.Info("disk generated",
		"particles", len(particles),
		"seed", app.Seed,
		"integrator", cfg.Integrator,
		"workers", cfg.Workers,
	)
	return app, nil
}

func (a *App) generate() (dynamo.Particles, error) {
	return a.disk.Generate(a.Config.Particles, physics.NewSource(a.Seed))
}

// Loop is the frame loop: clamp dt, step, upload, draw, present, poll.
func (a *App) Loop() error {
	for !a.Window.ShouldClose() {
		elapsed := a.Clock.Tick()
		if a.Running {
			if _, err := a.Sim.Advance(elapsed); err != nil {
				a.Logger.Error("simulation stopped", "err", err)
				a.err = err
				a.Window.SetShouldClose(true)
			}
		}

		a.Renderer.Draw(a.Camera)
		if a.screenshot {
			a.screenshot = false
			a.saveScreenshot()
		}

		a.Window.SwapBuffers()
		glfw.PollEvents()
		a.updateTitle()
	}
	return a.err
}

func (a *App) updateTitle() {
	now := glfw.GetTime()
	if now-a.lastTitle < 1 {
		return
	}
	a.lastTitle = now
	status := ""
	if !a.Running {
		status = " [paused]"
	}
	a.Window.SetTitle(fmt.Sprintf("%s  %.0f fps  t=%.1f%s", a.Config.Window.Title, a.Clock.FPS(), a.Sim.Time(), status))
}

func (a *App) reset() {
	particles, err := a.generate()
	if err != nil {
		a.Logger.Error("reset failed", "err", err)
		return
	}
	a.Sim.Reset(particles)
	if err := a.Buffer.Upload(particles); err != nil {
		a.Logger.Error("upload failed", "err", err)
	}
	a.Logger.Info("disk reset", "seed", a.Seed)
}

func (a *App) saveScreenshot() {
	w, h := a.Window.GetFramebufferSize()
	img := a.Renderer.ReadPixels(w, h)
	path := filepath.Join(a.ScreenshotDir, fmt.Sprintf("galaxy-%s.png", time.Now().Format("20060102-150405")))
	if err := export.WritePNG(path, img); err != nil {
		a.Logger.Error("screenshot failed", "err", err)
		return
	}
	a.Logger.Info("screenshot saved", "path", path)
}

// Close deletes the GL objects. The window and GLFW are torn down by Run.
func (a *App) Close() {
	if a.Renderer != nil {
		a.Renderer.Delete()
	}
	if a.Buffer != nil {
		a.Buffer.Delete()
	}
}
