// Package events publishes device endpoint lifecycle events to MQTT.
//
// Topics:
//
//	<prefix>/<device>/event/<kind>   open, write, read, release, fault
//	<prefix>/<device>/status         retained online/offline, with LWT
//
// Publishing never blocks the endpoint: events are queued and dropped
// when the queue is full.
package events
