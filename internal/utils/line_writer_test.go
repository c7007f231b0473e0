package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/internal/utils"
)

func TestLineWriterSplitsStreamedOutput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		chunks        []string
		expectedLines []string
	}{
		{
			name:          "complete_lines",
			chunks:        []string{"Step 1/4 : FROM ubuntu\nStep 2/4 : RUN apt-get update\n"},
			expectedLines: []string{"Step 1/4 : FROM ubuntu", "Step 2/4 : RUN apt-get update"},
		},
		{
			name:          "line_split_across_chunks",
			chunks:        []string{"Successfully ", "built 0123abcd\r\n"},
			expectedLines: []string{"Successfully built 0123abcd"},
		},
		{
			name:          "trailing_partial_line_flushed",
			chunks:        []string{"first\nsecond"},
			expectedLines: []string{"first", "second"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var receivedLines []string
			lineWriter := utils.NewLineWriter(func(line string) {
				receivedLines = append(receivedLines, line)
			})

			for _, chunk := range testCase.chunks {
				writtenBytes, writeError := lineWriter.Write([]byte(chunk))
				require.NoError(testInstance, writeError)
				require.Equal(testInstance, len(chunk), writtenBytes)
			}
			require.NoError(testInstance, lineWriter.Flush())
			require.Equal(testInstance, testCase.expectedLines, receivedLines)
		})
	}
}
