// Package services implements the driving ports: matching, patching,
// batch runs, dry runs, rollback, catalog building and settings.
//
// Services only talk to infrastructure through the driven ports, so every
// service can be exercised with the memory adapters.
package services
