package match_test

import (
	"github.com/thomas-fazzari/ciderfy/internal/match"
	"github.com/thomas-fazzari/ciderfy/internal/services"
)

// The concrete clients must keep satisfying the capability interfaces the
// resolvers consume; services may in turn import match for key normalization,
// so these assertions live outside the match package proper.
var (
	_ match.CodeResolver = (*services.MusicBrainzService)(nil)
	_ match.CodeResolver = (*services.CachedCodeResolver)(nil)
	_ match.Catalog      = (*services.AppleMusicService)(nil)
)
