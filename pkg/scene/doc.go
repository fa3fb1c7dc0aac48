// Package scene defines the run description of one extraction: the
// subvolume, the subplanes, the fracture and trace elements, and the
// numeric thresholds. A Scene is produced by evaluating a run script and
// is immutable once extraction starts.
package scene
