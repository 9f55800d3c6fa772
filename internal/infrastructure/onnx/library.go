package onnx

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

// libraryCandidates возвращает стандартные пути к библиотеке ONNX Runtime.
func libraryCandidates(goos string) []string {
	switch goos {
	case "windows":
		return []string{"onnxruntime.dll", "third_party/onnxruntime.dll"}
	case "darwin":
		return []string{"/usr/local/lib/libonnxruntime.dylib", "/opt/homebrew/lib/libonnxruntime.dylib"}
	default:
		return []string{
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/opt/onnxruntime/lib/libonnxruntime.so",
		}
	}
}

func findSharedLibrary(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func initializeEnvironment(libPath string, logger logrus.FieldLogger) error {
	if ort.IsInitialized() {
		return nil
	}

	if libPath == "" {
		libPath = findSharedLibrary(libraryCandidates(runtime.GOOS))
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
		logger.WithField("library", libPath).Debug("onnxruntime shared library")
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}
