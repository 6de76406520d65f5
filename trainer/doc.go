// Package trainer drives the fixed-epoch training loop of a convnet.Model:
// every epoch walks the dataset in half-open batches, and every batch runs a
// forward pass, the cross-entropy loss, the backward pass and one optimizer
// step. It also provides an evaluation helper that measures accuracy.
package trainer
