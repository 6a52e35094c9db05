// Package host is the in-process stand-in for the kernel's character
// device registry: device numbers, classes and device nodes, plus the
// module load/unload sequence that binds an endpoint to a node.
package host
