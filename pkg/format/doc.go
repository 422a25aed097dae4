// Package format renders captured traffic for humans.
//
// Delta renders a signed millisecond duration as a short fixed-width string
// suitable for aligned console columns:
//
//	format.Delta(7)      // "+7ms  "
//	format.Delta(1500)   // "+1.50s"
//	format.Delta(75000)  // "+1m15s"
//
// Render makes a best-effort attempt to decode a payload as XML or JSON so it
// can be shown structurally, falling back to the trimmed text. It never fails.
package format
