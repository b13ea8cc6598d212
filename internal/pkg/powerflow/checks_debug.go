// +build powerdebug

package powerflow

const debugChecks = true
