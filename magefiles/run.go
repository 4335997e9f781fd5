//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs ten seconds of animation and logs a summary every second.
func (Run) Headless() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run teapots...")
	_, err := executeCmd(binary, withArgs("-frames", "600", "-backends", "log"), withStream())
	return err
}

// Serves the viewer API on :8080 until interrupted.
func (Run) Serve() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd(binary, withArgs("-serve", ":8080", "-backends", "log"), withStream())
	return err
}

// Writes a png every 60 frames into out/.
func (Run) Snapshots() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd(binary, withArgs("-frames", "300", "-backends", "png", "-out", "out", "-png-every", "60"), withStream())
	return err
}

// Animates 300 frames and exports the final pose to out/teapots.glb.
func (Run) Export() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd(binary, withArgs("-frames", "300", "-backends", "", "-export", "out/teapots.glb"), withStream())
	return err
}
