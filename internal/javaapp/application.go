package javaapp

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"spring-boot-operator/internal/workload"
)

// Kind selects the packaging convention of a Java application.
type Kind int

const (
	// ExecutableArchive is a single executable jar in the application directory.
	ExecutableArchive Kind = iota + 1

	// ExpandedBuildpackLayout is an image built with Paketo buildpacks, where the
	// jar is already expanded under the workspace directory.
	ExpandedBuildpackLayout
)

func (k Kind) String() string {
	switch k {
	case ExecutableArchive:
		return "executable-jar"
	case ExpandedBuildpackLayout:
		return "buildpack"
	default:
		return "unknown"
	}
}

const (
	// AppDir is the conventional directory holding the executable jar.
	AppDir = "/app"

	// ArchiveExtension is the extension of Java archives.
	ArchiveExtension = ".jar"

	// BuildpackJava is the java binary installed by the Liberica buildpack.
	BuildpackJava = "/layers/paketo-buildpacks_bellsoft-liberica/jre/bin/java"

	// BuildpackClassPath is the expanded application root in buildpack images.
	BuildpackClassPath = "/workspace"

	// BuildpackLauncher is the Spring Boot loader class present in buildpack images.
	BuildpackLauncher = "/workspace/org/springframework/boot/loader/JarLauncher.class"

	// BuildpackLibDir holds the dependency jars of buildpack images.
	BuildpackLibDir = "/workspace/BOOT-INF/lib"

	launcherClass = "org.springframework.boot.loader.JarLauncher"
)

// Application describes how the workload's Java application is packaged.
// Exactly one group of fields is meaningful, selected by Kind.
type Application struct {
	Kind Kind

	// JarPath is set for ExecutableArchive.
	JarPath string

	// ClassPath and JavaPath are set for ExpandedBuildpackLayout.
	ClassPath string
	JavaPath  string
}

// NewExecutableJar returns an ExecutableArchive application.
func NewExecutableJar(jarPath string) Application {
	return Application{Kind: ExecutableArchive, JarPath: jarPath}
}

// NewBuildpack returns an ExpandedBuildpackLayout application with the
// standard Paketo paths.
func NewBuildpack() Application {
	return Application{
		Kind:      ExpandedBuildpackLayout,
		ClassPath: BuildpackClassPath,
		JavaPath:  BuildpackJava,
	}
}

// StartCommand returns the command line that starts the application.
func (a Application) StartCommand() []string {
	switch a.Kind {
	case ExecutableArchive:
		return []string{"java", "-jar", a.JarPath}
	case ExpandedBuildpackLayout:
		return []string{a.JavaPath, "-cp", a.ClassPath, launcherClass}
	default:
		return nil
	}
}

// HasLibrary reports whether the application bundles a jar whose file name
// starts with prefix, such as "mysql-connector".
func (a Application) HasLibrary(ctx context.Context, container workload.Container, prefix string) (bool, error) {
	var names []string

	switch a.Kind {
	case ExecutableArchive:
		entries, err := container.ListArchive(ctx, a.JarPath)
		if err != nil {
			return false, fmt.Errorf("failed to list entries of %s: %w", a.JarPath, err)
		}
		names = entries
	case ExpandedBuildpackLayout:
		files, err := container.ListFiles(ctx, BuildpackLibDir)
		if errors.Is(err, workload.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to list %s: %w", BuildpackLibDir, err)
		}
		for _, f := range files {
			names = append(names, f.Name)
		}
	default:
		return false, fmt.Errorf("unknown application kind %d", a.Kind)
	}

	for _, name := range names {
		base := path.Base(name)
		if strings.HasPrefix(base, prefix) && strings.HasSuffix(base, ArchiveExtension) {
			return true, nil
		}
	}
	return false, nil
}

func (a Application) String() string {
	switch a.Kind {
	case ExecutableArchive:
		return fmt.Sprintf("%s(%s)", a.Kind, a.JarPath)
	case ExpandedBuildpackLayout:
		return fmt.Sprintf("%s(%s)", a.Kind, a.ClassPath)
	default:
		return a.Kind.String()
	}
}
