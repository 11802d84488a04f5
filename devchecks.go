//go:build !nodevchecks

package gpubind

// devChecksEnabled gates development-only validation.
const devChecksEnabled = true
