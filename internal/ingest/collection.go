package ingest

import "fmt"

// ResolveCollection derives the target collection for a request.
// Without an explicit collection name the convention is
// "<communityId>_<platformId>"; with one it is
// "<communityId>_<collectionName>". Empty communityId/platformId are
// rejected by request validation upstream.
func ResolveCollection(communityID, platformID, collectionName string) string {
	if collectionName == "" {
		return fmt.Sprintf("%s_%s", communityID, platformID)
	}
	return fmt.Sprintf("%s_%s", communityID, collectionName)
}
