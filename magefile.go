//go:build mage
// +build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Format runs gofmt on all Go files
func Format() error {
	fmt.Println("Running gofmt...")
	return sh.RunV("gofmt", "-w", ".")
}

// Vet runs go vet on all packages (pkg/hlslast and pkg/hlsllex are
// skipped: their participle grammar tags are not key:"value" struct tags
// and vet's struct tag checker flags every field)
func Vet() error {
	fmt.Println("Running go vet...")
	packages := []string{
		"./pkg/token",
		"./pkg/diag",
		"./pkg/hlsltype",
		"./pkg/scope",
		"./pkg/ir",
		"./pkg/funcs",
		"./pkg/lower",
		"./pkg/liveness",
		"./pkg/compiler",
		"./internal/cache",
	}
	for _, pkg := range packages {
		if err := sh.RunV("go", "vet", pkg); err != nil {
			return err
		}
	}
	return nil
}

// Test runs all tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Build builds all packages
func Build() error {
	fmt.Println("Building packages...")
	return sh.RunV("go", "build", "./...")
}

// PreCommit runs all pre-commit checks (format, vet, test, build)
func PreCommit() error {
	fmt.Println("Running pre-commit checks...")
	mg.Deps(Format)
	mg.Deps(Vet)
	mg.Deps(Test)
	mg.Deps(Build)
	fmt.Println("all pre-commit checks passed")
	return nil
}

// CI runs all CI checks
func CI() error {
	fmt.Println("Running CI checks...")
	return PreCommit()
}

// Default target runs PreCommit
var Default = PreCommit
