package config

// Config carries every knob the export pipeline needs. Zero values mean
// "derive": width/height from the scene, workers from the host, quality from
// the chosen encoder.
type Config struct {
	ProjectPath  string
	OutputVideo  string
	Width        int
	Height       int
	FPS          int
	Workers      int
	VideoEncoder string
	Quality      int
	SpawnHidden  bool
	QRContent    string
	ShowStats    bool
	BuildVersion string
}
