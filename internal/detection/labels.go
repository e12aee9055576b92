package detection

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// UnknownLabel is used for class ids missing from a label table.
const UnknownLabel = "Unknown"

// LabelTable maps class ids to human-readable labels.
type LabelTable interface {
	Lookup(classID int) string
}

// Labels is an ordered label list indexed by class id.
type Labels []string

// Lookup returns the label for classID or UnknownLabel.
func (l Labels) Lookup(classID int) string {
	if classID < 0 || classID >= len(l) || l[classID] == "" {
		return UnknownLabel
	}
	return l[classID]
}

// NumericLabels labels each class with its decimal id.
type NumericLabels struct{}

func (NumericLabels) Lookup(classID int) string {
	return strconv.Itoa(classID)
}

// FleetLabels is the three-class truck yard model.
var FleetLabels = Labels{"Person", "Light", "Truck"}

// COCOLabels are the 80 classes YOLOv3 is trained on.
var COCOLabels = Labels{
	"person", "bicycle", "car", "motorbike", "aeroplane", "bus", "train",
	"truck", "boat", "traffic light", "fire hydrant", "stop sign", "parking meter",
	"bench", "bird", "cat", "dog", "horse", "sheep", "cow", "elephant", "bear",
	"zebra", "giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase",
	"frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat",
	"baseball glove", "skateboard", "surfboard", "tennis racket", "bottle",
	"wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet",
	"TV", "laptop", "mouse", "remote", "keyboard", "cell phone", "microwave",
	"oven", "toaster", "sink", "refrigerator", "book", "clock", "vase", "scissors",
	"teddy bear", "hair drier", "toothbrush",
}

// LabelSet resolves a named built-in table.
func LabelSet(name string) (LabelTable, error) {
	switch name {
	case "coco":
		return COCOLabels, nil
	case "fleet":
		return FleetLabels, nil
	case "numeric":
		return NumericLabels{}, nil
	}
	return nil, fmt.Errorf("unknown label set: %s", name)
}

// LoadLabelFile reads a darknet style names file, one label per line.
func LoadLabelFile(path string) (Labels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer file.Close()

	var labels Labels
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	// Trailing blank lines carry no class.
	for len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}
