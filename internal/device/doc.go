// Package device implements the reversing character device endpoint.
//
// An Endpoint owns one fixed-capacity message buffer shared by every Handle
// opened against it. Clients drive it through the file-like contract
// Open / Write / Read / Release:
//
//   - Write replaces the stored message. Input is truncated to Capacity-1
//     bytes and then to the first NUL byte. The accepted count reported to
//     the caller is the untruncated request length.
//   - Read delivers the stored message reversed, once per read session.
//     Further reads on the same handle return 0 bytes until the handle is
//     rewound or a new handle is opened.
//   - Open and Release never fail.
//
// All state is guarded by a single mutex held for the whole of each
// operation, so every operation is linearizable.
package device
