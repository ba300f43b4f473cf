package gui

import "github.com/go-gl/glfw/v3.3/glfw"

func (a *App) bindInput() {
	a.Window.SetKeyCallback(a.onKey)
	a.Window.SetCursorPosCallback(a.onCursor)
	a.Window.SetMouseButtonCallback(a.onMouseButton)
	a.Window.SetScrollCallback(a.onScroll)
	a.Window.SetFramebufferSizeCallback(a.onResize)
}

func (a *App) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape, glfw.KeyQ:
		w.SetShouldClose(true)
	case glfw.KeySpace:
		a.Running = !a.Running
	case glfw.KeyR:
		a.reset()
	case glfw.KeyS:
		a.screenshot = true
	case glfw.KeyC:
		a.Camera.LookFrom(a.Config.CameraPosition())
	}
}

func (a *App) onCursor(w *glfw.Window, x, y float64) {
	if a.dragging {
		a.Camera.Orbit(x-a.lastX, y-a.lastY)
	}
	a.lastX, a.lastY = x, y
}

func (a *App) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		a.dragging = true
		a.lastX, a.lastY = w.GetCursorPos()
	case glfw.Release:
		a.dragging = false
	}
}

func (a *App) onScroll(w *glfw.Window, xoff, yoff float64) {
	a.Camera.Zoom(yoff)
}

func (a *App) onResize(w *glfw.Window, width, height int) {
	a.Renderer.Viewport(width, height)
	a.Camera.SetViewport(width, height)
}
