// Package server exposes registered device nodes to external processes
// over WebSocket.
//
// A connection to /dev/{node} is one open handle: the handle is opened on
// upgrade and released when the connection closes. Requests and responses
// are JSON:
//
//	-> {"id":"1","type":"write","payload":{"data":"aG9sYQ=="}}
//	<- {"id":"1","type":"writeResponse","success":true,"payload":{"count":4}}
//	-> {"id":"2","type":"read","payload":{"len":256}}
//	<- {"id":"2","type":"readResponse","success":true,"payload":{"data":"YWxvaA==","count":4,"eof":false}}
//	-> {"id":"3","type":"rewind"}
//
// data is base64 (encoding/json []byte). write also accepts "text".
// A frame larger than the configured limit, or one that is not a valid
// request, is answered with {"type":"error"} and the connection stays open.
package server
