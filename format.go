package mpv

// Format identifies the wire representation of a node or property value.
// Values match libmpv's mpv_format enum and must not be reordered.
type Format int32

const (
	FormatNone      Format = 0 // No value
	FormatString    Format = 1 // NUL-terminated UTF-8 string
	FormatOSDString Format = 2 // String as rendered for OSD
	FormatFlag      Format = 3 // int 0/1 boolean
	FormatInt64     Format = 4 // Signed 64-bit integer
	FormatDouble    Format = 5 // 64-bit float
	FormatNode      Format = 6 // Tagged-union node
	FormatNodeArray Format = 7 // Ordered node sequence
	FormatNodeMap   Format = 8 // Ordered key/node pairs
	FormatByteArray Format = 9 // Raw byte buffer
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatString:
		return "string"
	case FormatOSDString:
		return "osd-string"
	case FormatFlag:
		return "flag"
	case FormatInt64:
		return "int64"
	case FormatDouble:
		return "double"
	case FormatNode:
		return "node"
	case FormatNodeArray:
		return "node-array"
	case FormatNodeMap:
		return "node-map"
	case FormatByteArray:
		return "byte-array"
	default:
		return "unknown"
	}
}

// EventKind identifies the kind of a dequeued engine event.
// Values match libmpv's mpv_event_id enum.
type EventKind int32

const (
	EventNone             EventKind = 0
	EventShutdown         EventKind = 1
	EventLogMessage       EventKind = 2
	EventGetPropertyReply EventKind = 3
	EventSetPropertyReply EventKind = 4
	EventCommandReply     EventKind = 5
	EventStartFile        EventKind = 6
	EventEndFile          EventKind = 7
	EventFileLoaded       EventKind = 8
	EventClientMessage    EventKind = 16
	EventVideoReconfig    EventKind = 17
	EventAudioReconfig    EventKind = 18
	EventSeek             EventKind = 20
	EventPlaybackRestart  EventKind = 21
	EventPropertyChange   EventKind = 22
	EventQueueOverflow    EventKind = 24
	EventHook             EventKind = 25
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventShutdown:
		return "shutdown"
	case EventLogMessage:
		return "log-message"
	case EventGetPropertyReply:
		return "get-property-reply"
	case EventSetPropertyReply:
		return "set-property-reply"
	case EventCommandReply:
		return "command-reply"
	case EventStartFile:
		return "start-file"
	case EventEndFile:
		return "end-file"
	case EventFileLoaded:
		return "file-loaded"
	case EventClientMessage:
		return "client-message"
	case EventVideoReconfig:
		return "video-reconfig"
	case EventAudioReconfig:
		return "audio-reconfig"
	case EventSeek:
		return "seek"
	case EventPlaybackRestart:
		return "playback-restart"
	case EventPropertyChange:
		return "property-change"
	case EventQueueOverflow:
		return "event-queue-overflow"
	case EventHook:
		return "hook"
	default:
		return "unknown"
	}
}

// oneShot reports whether events of this kind consume their registry
// record on delivery. Property changes keep the record until the
// observer is explicitly removed.
func (k EventKind) oneShot() bool {
	switch k {
	case EventGetPropertyReply, EventSetPropertyReply, EventCommandReply:
		return true
	default:
		return false
	}
}

// EndFileReason explains why playback of a file ended.
// Values match libmpv's mpv_end_file_reason enum.
type EndFileReason int32

const (
	EndFileEOF      EndFileReason = 0 // Reached end of the file
	EndFileStop     EndFileReason = 2 // Stopped by an external action
	EndFileQuit     EndFileReason = 3 // Quit command
	EndFileError    EndFileReason = 4 // Playback error; see Event.Err
	EndFileRedirect EndFileReason = 5 // Playlist redirect
)

func (r EndFileReason) String() string {
	switch r {
	case EndFileEOF:
		return "eof"
	case EndFileStop:
		return "stop"
	case EndFileQuit:
		return "quit"
	case EndFileError:
		return "error"
	case EndFileRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Log levels accepted by RequestLogMessages, coarsest to finest.
const (
	LogLevelNone  = "no"
	LogLevelFatal = "fatal"
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
	LogLevelV     = "v"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"
)
