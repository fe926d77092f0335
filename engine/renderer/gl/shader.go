package gl

import (
	"fmt"
	"strings"

	gogl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/tectonic3d/tectonic/engine/math"
)

// Shader is one compiled and linked program.
type Shader struct {
	Program uint32
}

func NewShader(vertexSrc, fragmentSrc string) (*Shader, error) {
	vertex, err := compileShader(vertexSrc, gogl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	fragment, err := compileShader(fragmentSrc, gogl.FRAGMENT_SHADER)
	if err != nil {
		gogl.DeleteShader(vertex)
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	program := gogl.CreateProgram()
	gogl.AttachShader(program, vertex)
	gogl.AttachShader(program, fragment)
	gogl.LinkProgram(program)

	gogl.DeleteShader(vertex)
	gogl.DeleteShader(fragment)

	var status int32
	gogl.GetProgramiv(program, gogl.LINK_STATUS, &status)
	if status == gogl.FALSE {
		logText := programInfoLog(program)
		gogl.DeleteProgram(program)
		return nil, fmt.Errorf("failed to link program: %s", logText)
	}

	return &Shader{Program: program}, nil
}

func (s *Shader) Use() {
	gogl.UseProgram(s.Program)
}

func (s *Shader) Destroy() {
	gogl.DeleteProgram(s.Program)
}

func (s *Shader) SetMat4(name string, value math.Mat4) {
	gogl.UniformMatrix4fv(s.uniform(name), 1, false, &value.Data[0])
}

func (s *Shader) SetVec3(name string, value math.Vec3) {
	gogl.Uniform3f(s.uniform(name), value.X, value.Y, value.Z)
}

func (s *Shader) SetFloat(name string, value float32) {
	gogl.Uniform1f(s.uniform(name), value)
}

func (s *Shader) SetInt(name string, value int32) {
	gogl.Uniform1i(s.uniform(name), value)
}

func (s *Shader) uniform(name string) int32 {
	return gogl.GetUniformLocation(s.Program, gogl.Str(name+"\x00"))
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gogl.CreateShader(shaderType)

	csources, free := gogl.Strs(source + "\x00")
	gogl.ShaderSource(shader, 1, csources, nil)
	free()
	gogl.CompileShader(shader)

	var status int32
	gogl.GetShaderiv(shader, gogl.COMPILE_STATUS, &status)
	if status == gogl.FALSE {
		var logLength int32
		gogl.GetShaderiv(shader, gogl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gogl.GetShaderInfoLog(shader, logLength, nil, gogl.Str(logText))
		gogl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile: %s", strings.TrimRight(logText, "\x00"))
	}

	return shader, nil
}

func programInfoLog(program uint32) string {
	var logLength int32
	gogl.GetProgramiv(program, gogl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gogl.GetProgramInfoLog(program, logLength, nil, gogl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}
