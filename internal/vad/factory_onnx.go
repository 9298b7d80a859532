//go:build onnx

package vad

func newSileroOrStub(modelData []byte) (Engine, error) {
	return NewSilero(modelData)
}
