package javaapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spring-boot-operator/internal/testing/mock"
)

func TestStartCommand(t *testing.T) {
	assert.Equal(t,
		[]string{"java", "-jar", "/app/test.jar"},
		NewExecutableJar("/app/test.jar").StartCommand())

	assert.Equal(t,
		[]string{BuildpackJava, "-cp", "/workspace", "org.springframework.boot.loader.JarLauncher"},
		NewBuildpack().StartCommand())

	assert.Nil(t, Application{}.StartCommand())
}

func TestHasLibrary_ExecutableJar(t *testing.T) {
	container := mock.NewContainer("spring-boot-app")
	container.AddArchive("/app/test.jar",
		"BOOT-INF/classes/application.properties",
		"BOOT-INF/lib/mysql-connector-java-8.0.30.jar",
		"BOOT-INF/lib/spring-core-5.3.22.jar",
	)
	app := NewExecutableJar("/app/test.jar")

	found, err := app.HasLibrary(context.Background(), container, "mysql-connector")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = app.HasLibrary(context.Background(), container, "postgresql")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = app.HasLibrary(context.Background(), container, "application")
	require.NoError(t, err)
	assert.False(t, found, "non-jar entries must not match")
}

func TestHasLibrary_Buildpack(t *testing.T) {
	container := mock.NewContainer("spring-boot-app")
	app := NewBuildpack()

	found, err := app.HasLibrary(context.Background(), container, "mysql-connector")
	require.NoError(t, err)
	assert.False(t, found, "missing library directory means absent")

	container.AddFile(BuildpackLibDir + "/mysql-connector-j-8.0.31.jar")
	found, err = app.HasLibrary(context.Background(), container, "mysql-connector")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHasLibrary_MissingArchive(t *testing.T) {
	container := mock.NewContainer("spring-boot-app")
	_, err := NewExecutableJar("/app/gone.jar").HasLibrary(context.Background(), container, "mysql")
	assert.Error(t, err)
}
