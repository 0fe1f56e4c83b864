// Package domain defines the core domain values for sessgate.
//
// Domain values carry no IO dependencies or framework coupling.
// This package contains the structured error type shared by the
// configuration, session and file-serving layers, and the error
// catalogue those layers return.
package domain
