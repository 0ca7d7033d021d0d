// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package extract

import (
	"encoding/xml"
	"strings"
)

// xmlNode is a generic XML tree node used by the OOXML converters. Matching
// is on local names only; OOXML documents mix several namespaces and the
// converters never need to tell them apart.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Content  string     `xml:",chardata"`
}

func parseXMLTree(data []byte) (*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) child(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) children(local string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// descendant returns the first descendant with the given local name.
func (n *xmlNode) descendant(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
		if found := n.Children[i].descendant(local); found != nil {
			return found
		}
	}
	return nil
}

// descendants returns all descendants with the given local name, in document
// order.
func (n *xmlNode) descendants(local string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
		out = append(out, n.Children[i].descendants(local)...)
	}
	return out
}

// text concatenates all character data beneath the node.
func (n *xmlNode) text() string {
	if len(n.Children) == 0 {
		return n.Content
	}
	var parts []string
	for i := range n.Children {
		if t := n.Children[i].text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "")
}
