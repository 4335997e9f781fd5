//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

const binary = "bin/teapots"

type Build mg.Namespace

// Builds the teapots binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", binary, "."), withEnv("CGO_ENABLED", "0"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the whole test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go mod tidy and go vet.
func (Build) Tidy() error {
	return goTidy()
}
