// Package workload gives the operator access to the workload container.
//
// Container is the narrow surface the reconciliation engine needs: a
// connectivity check, read-only filesystem inspection and short-lived command
// execution with a timeout. Two implementations are provided:
//
//   - KubeContainer runs everything through the pod exec subresource of the
//     unit's own pod (client-go remotecommand).
//   - LocalContainer treats a local directory as the container root, which is
//     useful for inspecting an unpacked image with the plan command.
package workload
