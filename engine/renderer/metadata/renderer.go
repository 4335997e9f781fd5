package metadata

import "github.com/go-gl/mathgl/mgl32"

// GeometryRenderData is one draw call: a mesh and the model matrix it is
// drawn with.
type GeometryRenderData struct {
	// Index of the node in its tree, in insertion order. Draw calls arrive in
	// pre-order, which can differ.
	UniqueID uint32 `json:"id" yaml:"id" toml:"id"`
	// Name of the scene node that produced the call.
	Name string `json:"name" yaml:"name" toml:"name"`
	// UniqueID of the parent node, -1 for the root.
	Parent int        `json:"parent" yaml:"parent" toml:"parent"`
	Model  mgl32.Mat4 `json:"model" yaml:"model" toml:"model"`
	Mesh   *Mesh      `json:"mesh" yaml:"mesh" toml:"mesh"`
}

// RenderPacket holds everything a backend needs to draw one frame. Each
// geometry is drawn with (ProjectionMatrix, ViewMatrix, Model).
type RenderPacket struct {
	FrameNumber      uint64                `json:"frame" yaml:"frame" toml:"frame"`
	DeltaTime        float64               `json:"delta_time" yaml:"delta_time" toml:"delta_time"`
	Width            uint32                `json:"width" yaml:"width" toml:"width"`
	Height           uint32                `json:"height" yaml:"height" toml:"height"`
	ProjectionMatrix mgl32.Mat4            `json:"projection" yaml:"projection" toml:"projection"`
	ViewMatrix       mgl32.Mat4            `json:"view" yaml:"view" toml:"view"`
	Geometries       []*GeometryRenderData `json:"geometries" yaml:"geometries" toml:"geometries"`
}

// MVP returns projection · view · model for one geometry of the packet.
func (p *RenderPacket) MVP(g *GeometryRenderData) mgl32.Mat4 {
	return p.ProjectionMatrix.Mul4(p.ViewMatrix).Mul4(g.Model)
}
