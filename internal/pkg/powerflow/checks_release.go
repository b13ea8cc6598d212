// +build !powerdebug

package powerflow

const debugChecks = false
