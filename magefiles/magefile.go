//go:build mage

// Magefile for ghsnap build, test and benchmark tasks
package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the ghsnap binary into bin/
func Build() error {
	fmt.Println("🔨 Building ghsnap...")
	return sh.RunV("go", "build", "-o", "bin/ghsnap", ".")
}

// Test runs the unit tests with the race detector
func Test() error {
	fmt.Println("🧪 Running unit tests...")
	return sh.RunV("go", "test", "-race", "-timeout=5m", "./...")
}

// Integration runs the end-to-end tests against a freshly built binary
func Integration() error {
	fmt.Println("🔗 Running integration tests...")
	return sh.RunV("go", "test", "-tags=basic", "-timeout=10m", "./integration")
}

// Database runs the history backend tests against MySQL and PostgreSQL containers
func Database() error {
	fmt.Println("🐳 Running database integration tests (requires Docker)...")
	return sh.RunV("go", "test", "-tags=database", "-timeout=20m", "./integration")
}

// Bench generates synthetic snapshots and times the offline stages
func Bench() error {
	mg.Deps(Install)
	fmt.Println("⏱️ Running stage benchmarks...")
	return sh.RunV("go", "run", "./benchmark", "/tmp/ghsnap-bench")
}

// Install installs ghsnap into GOPATH/bin
func Install() error {
	fmt.Println("📦 Installing ghsnap...")
	return sh.RunV("go", "install", ".")
}

// All runs unit and integration tests
func All() error {
	mg.SerialDeps(Test, Integration)
	return nil
}
