// Package relation carries relation data between this unit and the units it
// integrates with, using Secrets and ConfigMaps in the unit's namespace.
package relation
