package sync

// Direction selects how an update between two existing records is decided.
type Direction string

const (
	// DirectionLocalWins always pushes the local item to the storefront,
	// regardless of relative timestamps. This is the deployed default.
	DirectionLocalWins Direction = "LOCAL_WINS"
	// DirectionTimestampWins pushes whichever side is newer by comparing
	// the remote last-modified against the local modified timestamp.
	DirectionTimestampWins Direction = "TIMESTAMP_WINS"
)

// Policy is the named one-directional policy switch governing update
// direction and remote-to-local creation. Both behaviours are implemented
// and toggleable; the defaults reflect the observed deployment.
type Policy struct {
	// Direction decides the update path when both records exist
	Direction Direction
	// CreateLocalFromRemote enables creating a local item from an unmatched
	// remote product. Off by default.
	CreateLocalFromRemote bool
}

// DefaultPolicy returns the deployed one-directional policy: local always
// wins, remote-to-local creation disabled.
func DefaultPolicy() Policy {
	return Policy{
		Direction:             DirectionLocalWins,
		CreateLocalFromRemote: false,
	}
}
