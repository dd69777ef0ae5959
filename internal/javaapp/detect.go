package javaapp

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"spring-boot-operator/internal/workload"
	"spring-boot-operator/pkg/logging"
)

var (
	// ErrUnknownApplicationType means neither packaging convention matched.
	ErrUnknownApplicationType = errors.New("unknown Java application type")

	// ErrNoExecutableFound means the application directory holds no jar.
	ErrNoExecutableFound = errors.New("no jar file found")

	// ErrAmbiguousExecutable means the application directory holds several jars.
	ErrAmbiguousExecutable = errors.New("multiple jar files found")
)

// Detect classifies the Java application inside container.
//
// Buildpack images are recognized by the buildpack java binary together with
// the Spring Boot loader class. Otherwise AppDir must exist and contain exactly
// one jar file.
func Detect(ctx context.Context, container workload.Container) (Application, error) {
	isBuildpack, err := allExist(ctx, container, BuildpackJava, BuildpackLauncher)
	if err != nil {
		return Application{}, err
	}
	if isBuildpack {
		logging.Debug("Classifier", "Detected buildpack application in %s", BuildpackClassPath)
		return NewBuildpack(), nil
	}

	isDir, err := container.IsDir(ctx, AppDir)
	if err != nil {
		return Application{}, fmt.Errorf("failed to inspect %s: %w", AppDir, err)
	}
	if !isDir {
		return Application{}, ErrUnknownApplicationType
	}

	files, err := container.ListFiles(ctx, AppDir)
	if errors.Is(err, workload.ErrNotFound) {
		return Application{}, ErrUnknownApplicationType
	}
	if err != nil {
		return Application{}, fmt.Errorf("failed to list %s: %w", AppDir, err)
	}

	var jars []string
	for _, f := range files {
		if !f.IsDir && strings.HasSuffix(f.Name, ArchiveExtension) {
			jars = append(jars, f.Name)
		}
	}
	sort.Strings(jars)

	switch len(jars) {
	case 0:
		return Application{}, fmt.Errorf("%w in %s", ErrNoExecutableFound, AppDir)
	case 1:
		jarPath := path.Join(AppDir, jars[0])
		logging.Debug("Classifier", "Detected executable jar %s", jarPath)
		return NewExecutableJar(jarPath), nil
	default:
		logging.Error("Classifier", nil, "Multiple jar files found in %s: %v", AppDir, jars)
		return Application{}, fmt.Errorf("%w in %s: %s", ErrAmbiguousExecutable, AppDir, strings.Join(jars, ", "))
	}
}

func allExist(ctx context.Context, container workload.Container, paths ...string) (bool, error) {
	for _, p := range paths {
		exists, err := container.Exists(ctx, p)
		if err != nil {
			return false, fmt.Errorf("failed to inspect %s: %w", p, err)
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}
