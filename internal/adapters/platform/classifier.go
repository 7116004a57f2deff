// Package platform decides whether the host behaves like a mobile-class
// client, where leaving the app raises a warning instead of withering the
// tree at once.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/xvierd/forest-cli/internal/config"
	"github.com/xvierd/forest-cli/internal/ports"
)

// Class is the resolved platform class.
type Class string

const (
	ClassMobile  Class = "mobile"
	ClassDesktop Class = "desktop"
)

// Classifier implements ports.PlatformClassifier.
type Classifier struct {
	class  Class
	reason string
}

// Ensure Classifier implements ports.PlatformClassifier.
var _ ports.PlatformClassifier = (*Classifier)(nil)

// New resolves the configured class. "auto" probes the environment once.
func New(class string) (*Classifier, error) {
	return newClassifier(class, os.Getenv, runtime.GOOS)
}

func newClassifier(class string, getenv func(string) string, goos string) (*Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(class)) {
	case config.PlatformMobile:
		return &Classifier{class: ClassMobile, reason: "configured"}, nil
	case config.PlatformDesktop:
		return &Classifier{class: ClassDesktop, reason: "configured"}, nil
	case config.PlatformAuto, "":
		c, reason := detect(getenv, goos)
		return &Classifier{class: c, reason: reason}, nil
	default:
		return nil, fmt.Errorf("unknown platform class %q", class)
	}
}

// IsMobileClass reports whether interruptions should raise a warning.
func (c *Classifier) IsMobileClass() bool {
	return c.class == ClassMobile
}

// Class returns the resolved class.
func (c *Classifier) Class() Class {
	return c.class
}

// String returns a human-readable description of the classification.
func (c *Classifier) String() string {
	return fmt.Sprintf("%s (%s)", c.class, c.reason)
}

// detect probes for terminal environments that run on phones and tablets.
func detect(getenv func(string) string, goos string) (Class, string) {
	switch goos {
	case "android", "ios":
		return ClassMobile, "GOOS=" + goos
	}

	// Termux on Android
	if getenv("TERMUX_VERSION") != "" {
		return ClassMobile, "TERMUX_VERSION"
	}
	if strings.Contains(getenv("PREFIX"), "com.termux") {
		return ClassMobile, "PREFIX"
	}

	// Other Android terminals export the system root
	if getenv("ANDROID_ROOT") != "" && getenv("ANDROID_DATA") != "" {
		return ClassMobile, "ANDROID_ROOT"
	}

	// iSH on iOS reports itself in the terminal program
	if strings.EqualFold(getenv("TERM_PROGRAM"), "ish") {
		return ClassMobile, "TERM_PROGRAM"
	}

	return ClassDesktop, "default"
}
