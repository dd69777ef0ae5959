// Package mock provides in-memory collaborators for testing the operator
// without a cluster.
//
// Key Components:
//
// Container: a workload.Container backed by an in-memory file tree. Commands
// are answered by handlers registered per command prefix, and every call is
// recorded.
//
// Supervisor: records added layers and replans, and can be told to fail.
//
// Oracle: a memory quota oracle returning a fixed quota or error.
//
// Relations: a relation store holding provider data per relation name and
// recording the data this unit publishes.
//
// StatusSink: a unit.Sink keeping the full status history, so tests can
// assert on the order of status writes.
//
// Usage:
//
//	container := mock.NewContainer("spring-boot-app").AddArchive("/app/demo.jar")
//	container.HandleExec([]string{"java"}, mock.ExitWith(0))
//	supervisor := mock.NewSupervisor()
//	sink := mock.NewStatusSink()
//	engine := reconciler.NewEngine(reconciler.EngineConfig{
//	    Container:  container,
//	    Supervisor: supervisor,
//	    Oracle:     mock.NewOracle(memory.Unconstrained()),
//	    Status:     unit.NewRecorder(sink),
//	    Options:    mock.StaticOptions(config.Options{}),
//	})
package mock
