// Package changedetect diffs current source listings against stored
// checkpoints to classify what changed since the last sweep.
package changedetect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"metasync/internal/domain"
)

// ContentFingerprint hashes the descriptive content of an asset: names,
// description, owner, business context, lineage, and sorted properties.
// Timestamps and sync status are deliberately excluded so that a re-listing
// with no real change stays Unchanged.
func ContentFingerprint(asset *domain.MetadataAsset) string {
	var b strings.Builder
	b.WriteString(asset.TechnicalName)
	b.WriteByte('\n')
	b.WriteString(asset.BusinessName)
	b.WriteByte('\n')
	b.WriteString(asset.Description)
	b.WriteByte('\n')
	b.WriteString(asset.Owner)
	b.WriteByte('\n')

	bc := asset.Business
	b.WriteString(bc.BusinessName)
	b.WriteByte('\n')
	b.WriteString(bc.Description)
	b.WriteByte('\n')
	b.WriteString(bc.Owner)
	b.WriteByte('\n')
	b.WriteString(bc.Steward)
	b.WriteByte('\n')
	b.WriteString(bc.CertificationStatus)
	b.WriteByte('\n')
	writeList(&b, "tags", bc.Tags)
	writeList(&b, "dimensions", bc.Dimensions)
	writeList(&b, "measures", bc.Measures)
	writeList(&b, "hierarchies", bc.Hierarchies)

	for _, edge := range asset.Lineage {
		b.WriteString(edge.SourceAssetID)
		b.WriteByte('>')
		b.WriteString(edge.TargetAssetID)
		b.WriteByte(':')
		b.WriteString(edge.RelationType)
		b.WriteByte('\n')
	}

	keys := make([]string, 0, len(asset.Properties))
	for k := range asset.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", asset.Properties[k])
		b.WriteByte('\n')
	}

	return digest(b.String())
}

// SchemaFingerprint hashes the ordered column list: name, type, nullability.
func SchemaFingerprint(asset *domain.MetadataAsset) string {
	var b strings.Builder
	for _, c := range asset.Schema.Columns {
		b.WriteString(c.Name)
		b.WriteByte('|')
		b.WriteString(c.Type)
		b.WriteByte('|')
		b.WriteString(strconv.FormatBool(c.Nullable))
		b.WriteByte('\n')
	}
	return digest(b.String())
}

func writeList(b *strings.Builder, label string, values []string) {
	b.WriteString(label)
	b.WriteByte('=')
	b.WriteString(strings.Join(values, ","))
	b.WriteByte('\n')
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
