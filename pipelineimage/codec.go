package pipelineimage

import "go.yaml.in/yaml/v3"

// Codec implements cache.Codec using the teacher's YAML stack (grounded
// on dag/loader.go's YAML-driven graph loading), shared by the
// distributed cache backend and the compilation cache.
type Codec struct{}

func (Codec) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (Codec) Decode(data []byte, out any) error {
	return yaml.Unmarshal(data, out)
}

// EncodeImage/DecodeImage serialize a pipeline image for the
// compilation-cache backend.
func EncodeImage(img *Image) ([]byte, error) {
	return yaml.Marshal(img)
}

func DecodeImage(data []byte) (*Image, error) {
	var img Image
	if err := yaml.Unmarshal(data, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// EncodeSuspended/DecodeSuspended serialize a suspended-execution record.
func EncodeSuspended(s *SuspendedExecution) ([]byte, error) {
	return yaml.Marshal(s)
}

func DecodeSuspended(data []byte) (*SuspendedExecution, error) {
	var s SuspendedExecution
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
