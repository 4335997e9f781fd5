package metadata

// Mesh is an opaque handle to geometry owned by the mesh provider. The scene
// only references it; every node of the teapot hierarchy shares one.
type Mesh struct {
	UniqueID uint32 `json:"id" yaml:"id" toml:"id"`
	Name     string `json:"name" yaml:"name" toml:"name"`
}

const TeapotMeshName = "teapot"

func NewTeapotMesh() *Mesh {
	return &Mesh{UniqueID: 1, Name: TeapotMeshName}
}
