//go:build nodevchecks

package gpubind

const devChecksEnabled = false
