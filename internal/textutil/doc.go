// Package textutil provides text helpers shared by the sample pipeline,
// chiefly turning arbitrary video titles into safe object names.
package textutil
