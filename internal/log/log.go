package log

const (
	// FldFile is the name of the log field for storing file name information
	FldFile = "file"
	// FldPath is the name of the log field for storing path name information
	FldPath = "path"
	// FldTransport is the name of the log field for storing a transport name
	FldTransport = "transport"
	// FldSession is the name of the log field for storing the session ID
	FldSession = "session"
	// FldFingerprint is the name of the log field for storing a device fingerprint ID
	FldFingerprint = "fingerprint"
	// FldSong is the name of the log field for storing a song ID
	FldSong = "song"
	// FldRequest is the name of the log field for storing a song request ID
	FldRequest = "request"
	// FldPoll is the name of the log field for storing a poll ID
	FldPoll = "poll"
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldID is the ID of an entity used in the log entry
	FldID = "id"
	// FldStatus is a request status used in the log entry
	FldStatus = "status"
	// FldSearch is a search term used in a search
	FldSearch = "search"
	// FldOffset is the requested offset value in a search
	FldOffset = "offset"
	// FldLimit is the requested result limit in a search
	FldLimit = "limit"
	// FldCount is a result or item count used in the log entry
	FldCount = "count"
)
